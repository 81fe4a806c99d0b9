package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/menta2k/sticker-kit/internal/api"
	"github.com/menta2k/sticker-kit/internal/config"
)

func main() {
	path := os.Getenv("STICKERKIT_CONFIG")
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	h, err := api.NewHandler(cfg)
	if err != nil {
		log.Fatalf("invalid configuration %s: %v", path, err)
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes()
	api.RegisterRoutes(r, h)

	addr := cfg.Server.Addr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	log.Println("starting server on " + addr)
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
