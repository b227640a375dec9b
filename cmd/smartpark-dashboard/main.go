package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/smartpark/cmd/smartpark-dashboard/app"
)

func main() {
	app.NewApp().Run()
}
