package main

import "pulseboard/internal/bootstrap"

func main() {
	bootstrap.Run()
}
