package main

import (
	"github.com/corray333/foodorder/internal/app"
	"github.com/corray333/foodorder/internal/config"
)

func main() {
	config.MustInit("order-svc")
	app.MustNewApp().Run()
}
