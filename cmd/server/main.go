package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/shinramenisbae/mashed/internal/common/clock"
	"github.com/shinramenisbae/mashed/internal/config"
	"github.com/shinramenisbae/mashed/internal/game"
	"github.com/shinramenisbae/mashed/internal/gif"
	"github.com/shinramenisbae/mashed/internal/gif/giphy"
	"github.com/shinramenisbae/mashed/internal/media"
	"github.com/shinramenisbae/mashed/internal/ws"
	staticserver "github.com/shinramenisbae/mashed/static"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Mashed - Real-time sound & GIF mashup party game

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                       Port to listen on (default: 8080)
  GIPHY_API_KEY              Giphy API key (fallback GIFs served without it)
  GIPHY_BASE_URL             Custom Giphy API base URL (optional)
  TOTAL_ROUNDS               Rounds per game (default: 3)
  RECORDING_SECONDS          Recording phase time limit (default: 30)
  CAPTIONING_SECONDS         Captioning phase time limit (default: 45)
  VOTING_SECONDS             Voting phase time limit (default: 30)
  BONUS_CATEGORIES           Comma-separated bonus vote categories
  MAX_AUDIO_BYTES            Max uploaded audio size (default: 2MiB)
  EXPORT_ENABLED             Export results to file at game end (default: true)
  EXPORT_FILE                Results file path (default: ./mashed-results.txt)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Mashed %s\n", version)
		return
	}

	_ = godotenv.Load()

	port := *portFlag
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	cfg := config.FromEnv()

	exportFile := ""
	if cfg.ExportEnabled {
		exportFile = cfg.ExportFile
	}

	// Collaborators + engine + socket server
	store := media.NewStore(cfg.MaxAudioBytes)
	sock := ws.New(cfg, store)
	rm := game.NewManager(game.Deps{
		Emitter:    sock,
		Clock:      &clock.DefaultClock{},
		ExportFile: exportFile,
	})
	sock.SetManager(rm)
	sio := sock.Mount(r)
	defer sio.Close()

	var gifProvider gif.Provider
	if cfg.GiphyKey != "" {
		gifProvider = giphy.New(cfg.GiphyKey, cfg.GiphyBaseURL)
	}

	// Minimal HTTP API: room bootstrap, GIF search, audio blobs
	r.POST("/api/rooms", func(c *gin.Context) {
		var req struct {
			Name     string         `json:"name"`
			Avatar   string         `json:"avatar"`
			Settings *game.Settings `json:"settings"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		settings := cfg.Defaults
		if req.Settings != nil {
			settings = *req.Settings
		}
		room, host, token, err := rm.CreateRoom(req.Name, req.Avatar, settings)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomCode": room.Code, "playerToken": token, "playerId": host.ID})
	})

	r.GET("/api/gifs/search", func(c *gin.Context) {
		query := c.Query("q")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
		results := gif.SearchWithFallback(c.Request.Context(), gifProvider, query, limit)
		c.JSON(http.StatusOK, gin.H{"results": results})
	})

	r.POST("/api/audio", func(c *gin.Context) {
		durationMs, _ := strconv.Atoi(c.Query("durationMs"))
		data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, int64(cfg.MaxAudioBytes)))
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio_too_large"})
			return
		}
		clip, err := store.Save(data, c.ContentType(), durationMs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ref": clip.Ref, "durationMs": clip.DurationMs})
	})

	r.GET("/api/audio/:ref", func(c *gin.Context) {
		clip, err := store.Get(c.Param("ref"))
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, clip.Mime, clip.Data)
	})

	// Serve frontend (if embedded build is present) for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
