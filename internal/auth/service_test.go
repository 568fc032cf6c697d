package auth_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/auth"
	operatorDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/operator"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockOperatorRepository struct {
	operators map[string]*operatorDatamodel.Operator
}

func (m *mockOperatorRepository) GetByEmail(email string) (*operatorDatamodel.Operator, error) {
	op, ok := m.operators[email]
	if !ok {
		return nil, errors.New("record not found")
	}
	return op, nil
}

func (m *mockOperatorRepository) GetByID(id int64) (*operatorDatamodel.Operator, error) {
	for _, op := range m.operators {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, errors.New("record not found")
}

var _ = Describe("Auth Service", func() {
	var (
		mockRepo *mockOperatorRepository
		tokenGen *auth.JWTTokenGenerator
		service  *auth.Service
		operator *operatorDatamodel.Operator
	)

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		operator = &operatorDatamodel.Operator{
			ID:           1,
			Email:        "operator@parking.local",
			Name:         "Booth Operator",
			PasswordHash: string(hash),
			IsActive:     true,
		}
		mockRepo = &mockOperatorRepository{operators: map[string]*operatorDatamodel.Operator{
			operator.Email: operator,
		}}

		tokenGen = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", time.Minute, time.Hour)
		logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		service = auth.NewService(mockRepo, tokenGen, bcrypt.MinCost, logger)
	})

	Describe("Authenticate", func() {
		It("issues a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "operator@parking.local",
				Password: "password",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := tokenGen.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.OperatorID).To(Equal(int64(1)))
			Expect(claims.Email).To(Equal("operator@parking.local"))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "operator@parking.local",
				Password: "not-the-password",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects an unknown email with the same error as a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@parking.local",
				Password: "password",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects a deactivated operator even with the right password", func() {
			operator.IsActive = false

			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "operator@parking.local",
				Password: "password",
			})
			Expect(err).To(MatchError(internal.ErrOperatorInactive))
		})

		It("rejects an empty login payload", func() {
			_, err := service.Authenticate(auth.LoginDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a refresh token for a new pair", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "operator@parking.local",
				Password: "password",
			})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())

			claims, err := tokenGen.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.OperatorID).To(Equal(int64(1)))
		})

		It("refuses an access token in the refresh slot", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "operator@parking.local",
				Password: "password",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RefreshTokens(tokens.AccessToken)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("refuses refreshing for a deactivated operator", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "operator@parking.local",
				Password: "password",
			})
			Expect(err).NotTo(HaveOccurred())

			operator.IsActive = false
			_, err = service.RefreshTokens(tokens.RefreshToken)
			Expect(err).To(MatchError(internal.ErrOperatorInactive))
		})

		It("refuses garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-jwt")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("token expiry", func() {
		It("rejects an expired access token with a typed error", func() {
			shortGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", -time.Minute, time.Hour)
			token, err := shortGen.GenerateAccessToken(1, "operator@parking.local")
			Expect(err).NotTo(HaveOccurred())

			_, err = shortGen.ValidateAccessToken(token)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects a token signed with a different secret", func() {
			otherGen := auth.NewJWTTokenGenerator("other-secret", "refresh-secret", time.Minute, time.Hour)
			token, err := otherGen.GenerateAccessToken(1, "operator@parking.local")
			Expect(err).NotTo(HaveOccurred())

			_, err = tokenGen.ValidateAccessToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("HashPassword", func() {
		It("produces a hash that verifies against the original password", func() {
			hash, err := service.HashPassword("s3cret")
			Expect(err).NotTo(HaveOccurred())
			Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret"))).To(Succeed())
		})
	})
})
