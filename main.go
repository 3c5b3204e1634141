package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/goinstant/internal/app"
)

// @title           GoInstant API
// @version         1.0
// @description     GoInstant converts, formats and stores nanosecond-precision instants.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
func main() {
	application := app.New()
	wait := application.Start()
	<-wait

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx)
}
