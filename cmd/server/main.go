package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fight-club/matchsim/internal/api"
	"github.com/fight-club/matchsim/internal/config"
	"github.com/fight-club/matchsim/internal/driver"
	"github.com/fight-club/matchsim/internal/match"
	"github.com/fight-club/matchsim/internal/vision"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	log.Println("================================")
	log.Println(" MATCHSIM - FOOTBALL ENGINE")
	log.Println("================================")

	appConfig := config.Load()

	seed := int64(getEnvInt("MATCH_SEED", 1))
	matchID := getEnvWithDefault("MATCH_ID", "match-1")

	m := match.New(seed, appConfig, buildRoster("home", appConfig.Limits.MaxSquadSize), buildRoster("away", appConfig.Limits.MaxSquadSize))
	log.Printf("match %q created (seed=%d, half=%s)", matchID, seed, appConfig.Match.HalfDuration)

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	registry := api.NewMatchSet(map[string]api.MatchHandle{matchID: m})
	server := api.NewServer(registry)

	rt := driver.NewRealTime(m, time.Millisecond, driver.Hooks{})
	rt.Start()
	log.Println("real-time driver started")

	addr := ":" + strconv.Itoa(appConfig.Server.Port)
	go func() {
		log.Printf("control plane listening on http://localhost%s", addr)
		log.Printf("snapshot:     GET  /matches/%s/snapshot", matchID)
		log.Printf("summary:      GET  /matches/%s/summary", matchID)
		log.Printf("ws stream:    GET  /matches/%s/ws", matchID)
		log.Printf("shout:        POST /matches/%s/shout", matchID)
		log.Printf("substitution: POST /matches/%s/substitution", matchID)
		log.Printf("tactics:      POST /matches/%s/tactics", matchID)
		if err := server.Start(addr); err != nil {
			log.Fatalf("control plane failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Println("ready, press Ctrl+C to stop")
	<-quit

	log.Println("shutting down...")
	rt.Stop()
	server.Stop()
	log.Println("goodbye")
}

// buildRoster fabricates a squad of n evenly-attributed players with
// stable ids, since this entry point has no external roster source —
// real attribute data would be loaded from a data file a future iteration
// adds.
func buildRoster(prefix string, n int) []*match.Player {
	if n < 11 {
		n = 11
	}
	out := make([]*match.Player, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &match.Player{
			ID:          fmt.Sprintf("%s-%02d", prefix, i+1),
			SquadNumber: i + 1,
			VisionAttrs: vision.Attributes{Awareness: 0.6, Anticipation: 0.6, VisionRating: 0.6},
		})
	}
	return out
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
