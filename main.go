package main

import "github.com/mostafaSataki/LprParkingWeb-sub000/cmd"

func main() {
	cmd.Execute()
}
