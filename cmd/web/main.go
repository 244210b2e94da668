package main

import (
	"fmt"
	"log"
	"os"

	"github.com/minigolfeveryday/mged-site/internal/config"
	"github.com/minigolfeveryday/mged-site/internal/web"
	pkglogger "github.com/minigolfeveryday/mged-site/pkg/logger"
)

func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	server, err := web.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to build web server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Web.Port)
	pkglogger.Info("Web server listening on %s (API at %s)", addr, cfg.Web.APIURL)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
