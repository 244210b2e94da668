package main

import (
	"flag"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/minigolfeveryday/mged-site/internal/config"
	"github.com/minigolfeveryday/mged-site/internal/migration"
	"github.com/minigolfeveryday/mged-site/internal/repository"
	"github.com/minigolfeveryday/mged-site/internal/service"
)

func main() {
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	importVideos := flag.Bool("import-videos", false, "import the legacy video archive after migrating")
	videosFile := flag.String("videos-file", "", "legacy archive path (defaults to videos.legacy_file from config)")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	config.LoadDotEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Schema migration complete")

	if !*importVideos {
		return
	}

	path := *videosFile
	if path == "" {
		path = cfg.Videos.LegacyFile
	}

	videoRepo := repository.NewVideoRepository(db)
	videoService := service.NewVideoService(videoRepo, nil, nil)

	count, err := videoService.ImportLegacyFile(path)
	if err != nil {
		log.Fatalf("Legacy import failed: %v", err)
	}
	log.Printf("Imported %d videos from %s", count, path)
}
