package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// CallbackJob is a pending online payment waiting for its simulated gateway
// decision.
type CallbackJob struct {
	Authority     string
	TransactionID string
	Amount        int64
}

type worker struct {
	id         int
	workerPool chan chan CallbackJob
	jobChannel chan CallbackJob
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan CallbackJob, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan CallbackJob),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, processFunc func(CallbackJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker processing callback", "worker_id", w.id, "authority", job.Authority)
				processFunc(job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// Simulator plays the role of a real gateway in local development: it accepts
// queued callback jobs and, after a short delay, posts a success or failure
// callback to the webhook URL the way a production gateway would.
type Simulator struct {
	webhookURL string
	logger     *slog.Logger

	jobQueue   chan CallbackJob
	workerPool chan chan CallbackJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type SimulatorConfig struct {
	WebhookURL     string
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

func NewSimulator(cfg SimulatorConfig, logger *slog.Logger) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	jobQueueSize := cfg.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}
	workerPoolSize := cfg.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	s := &Simulator{
		webhookURL: cfg.WebhookURL,
		logger:     logger,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan CallbackJob, jobQueueSize),
		workerPool: make(chan chan CallbackJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.startWorkerPool()

	return s
}

func (s *Simulator) startWorkerPool() {
	s.once.Do(func() {
		for i := 0; i < s.maxWorkers; i++ {
			w := newWorker(i, s.workerPool, s.logger)
			w.start(s.ctx, &s.wg, s.processCallbackJob)
		}

		s.wg.Add(1)
		go s.dispatch()

		s.logger.Info("gateway simulator worker pool started",
			"max_workers", s.maxWorkers,
			"queue_size", cap(s.jobQueue))
	})
}

func (s *Simulator) dispatch() {
	defer s.wg.Done()

	for {
		select {
		case job := <-s.jobQueue:
			select {
			case jobChannel := <-s.workerPool:
				select {
				case jobChannel <- job:
				case <-s.ctx.Done():
					s.logger.Info("dispatcher shutting down")
					return
				}
			case <-s.ctx.Done():
				s.logger.Info("dispatcher shutting down")
				return
			}
		case <-s.ctx.Done():
			s.logger.Info("dispatcher shutting down")
			return
		}
	}
}

// Enqueue schedules a callback for a pending online payment. Returns false
// when the queue is full.
func (s *Simulator) Enqueue(job CallbackJob) bool {
	select {
	case s.jobQueue <- job:
		s.logger.Info("callback job queued",
			"authority", job.Authority,
			"queue_length", len(s.jobQueue))
		return true
	default:
		s.logger.Warn("callback queue full, dropping job",
			"authority", job.Authority,
			"queue_capacity", cap(s.jobQueue))
		return false
	}
}

func (s *Simulator) Shutdown() {
	s.logger.Info("shutting down gateway simulator")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("gateway simulator shutdown complete")
}

func (s *Simulator) processCallbackJob(job CallbackJob) {
	delay := time.Duration(1+rand.Intn(4)) * time.Second

	select {
	case <-time.After(delay):
	case <-s.ctx.Done():
		s.logger.Info("callback job cancelled", "authority", job.Authority)
		return
	}

	status := "OK"
	if rand.Float32() >= 0.9 {
		status = "NOK"
	}

	s.sendCallback(job, status)
}

func (s *Simulator) sendCallback(job CallbackJob, status string) {
	payload := map[string]interface{}{
		"authority":      job.Authority,
		"status":         status,
		"transaction_id": job.TransactionID,
		"amount":         job.Amount,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal callback payload", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		s.logger.Error("failed to create callback request",
			"error", err,
			"authority", job.Authority)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		s.logger.Error("callback delivery failed",
			"error", err,
			"authority", job.Authority)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		s.logger.Info("callback delivered",
			"authority", job.Authority,
			"status", status)
	} else {
		s.logger.Warn("callback rejected by webhook",
			"authority", job.Authority,
			"status_code", resp.StatusCode)
	}
}
