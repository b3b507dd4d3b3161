package main

//go:generate swag init -g cmd/statusd/main.go -o docs

// @title           Topic Status API
// @version         0.1.0
// @description     Deferred topic status transitions and reconcile sweep.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
