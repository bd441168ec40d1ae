package main

import (
	"github.com/carlos18bp/editor-publisher-feature/config"
	"github.com/carlos18bp/editor-publisher-feature/models"
	"github.com/carlos18bp/editor-publisher-feature/routes"
	"github.com/carlos18bp/editor-publisher-feature/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Blog{})

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
