package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/alisto-app/alisto-api/api/handlers"

	"go.uber.org/zap"

	"github.com/alisto-app/alisto-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	a.Initialize() //initialize database, scheduler and router

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("alisto-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
