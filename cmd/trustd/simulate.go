package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	cli "github.com/urfave/cli/v2"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/router"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/scorestore"
)

// simulateCmd drives the full in-memory pipeline with synthetic observation
// events. Useful for eyeballing score movement and alert behavior without
// real producers attached.
var simulateCmd = &cli.Command{
	Name:  "simulate",
	Usage: "publish synthetic observation events through an in-memory pipeline",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "events",
			Usage: "total number of synthetic events to publish",
			Value: 500,
		},
		&cli.IntFlag{
			Name:  "casinos",
			Usage: "size of the synthetic casino population",
			Value: 8,
		},
		&cli.IntFlag{
			Name:  "users",
			Usage: "size of the synthetic user population",
			Value: 25,
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "randomness seed (0 picks one from the clock)",
			Value: 0,
		},
		&cli.IntFlag{
			Name:  "flush-every",
			Usage: "flush a rollup window after this many events",
			Value: 100,
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := configLogger(cctx, os.Stdout)
		ctx := context.Background()

		seed := cctx.Int64("seed")
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		gofakeit.Seed(seed)
		rng := rand.New(rand.NewSource(seed))

		srv, err := NewServer(ServerConfig{Logger: logger})
		if err != nil {
			return err
		}

		casinos := make([]string, cctx.Int("casinos"))
		for i := range casinos {
			casinos[i] = gofakeit.Company()
		}
		domains := make([]string, len(casinos))
		for i := range domains {
			domains[i] = gofakeit.DomainName()
		}
		users := make([]string, cctx.Int("users"))
		for i := range users {
			users[i] = gofakeit.Username()
		}

		total := cctx.Int("events")
		flushEvery := cctx.Int("flush-every")
		logger.Info("simulation starting",
			"events", total, "casinos", len(casinos), "users", len(users), "seed", seed)

		for i := 0; i < total; i++ {
			publishSynthetic(ctx, srv.router, rng, casinos, domains, users)
			if flushEvery > 0 && (i+1)%flushEvery == 0 {
				batches := srv.rollup.Flush(ctx)
				logger.Info("window flushed", "published", i+1, "batches", len(batches))
			}
		}
		srv.rollup.Flush(ctx)

		stats := srv.router.Stats()
		logger.Info("simulation complete",
			"subscriptions", stats.Subscriptions, "historySize", stats.HistorySize,
			"alerts", len(srv.rollup.Alerts()))

		for _, kind := range []scorestore.Kind{scorestore.KindCasino, scorestore.KindDomain, scorestore.KindDegen} {
			eng := srv.engineFor(string(kind))
			entities, err := eng.Entities(ctx)
			if err != nil {
				return err
			}
			for _, entity := range entities {
				v, err := eng.GetBreakdown(ctx, entity)
				if err != nil {
					return err
				}
				fmt.Printf("%-8s %-32s score=%3d level=%s\n", kind, entity, v.Score, v.Level)
			}
		}
		for _, a := range srv.rollup.Alerts() {
			fmt.Printf("ALERT    %-32s kind=%s severity=%d totalDelta=%.1f x%d\n",
				a.Entity, a.Kind, a.Severity, a.TotalDelta, a.Occurrences)
		}
		return nil
	},
}

func publishSynthetic(ctx context.Context, r *router.Router, rng *rand.Rand, casinos, domains, users []string) {
	pick := func(pool []string) string { return pool[rng.Intn(len(pool))] }
	riskLevels := []string{event.RiskLow, event.RiskMedium, event.RiskHigh, event.RiskCritical}

	switch rng.Intn(7) {
	case 0:
		r.Publish(ctx, event.TypeBonusNerfDetected, "sim-bonus-monitor", event.BonusNerf{
			Casino:      pick(casinos),
			Offer:       gofakeit.ProductName(),
			PercentDrop: gofakeit.Float64Range(0.05, 0.6),
		}, "")
	case 1:
		r.Publish(ctx, event.TypeLinkFlagged, "sim-link-scanner", event.LinkFlagged{
			Domain:    pick(domains),
			URL:       gofakeit.URL(),
			Casino:    pick(casinos),
			RiskLevel: riskLevels[rng.Intn(len(riskLevels))],
		}, "")
	case 2:
		r.Publish(ctx, event.TypeTiltDetected, "sim-tilt-monitor", event.TiltDetected{
			Severity:  rng.Intn(5) + 1,
			Indicator: gofakeit.HackerVerb(),
		}, pick(users))
	case 3:
		r.Publish(ctx, event.TypeCooldownViolated, "sim-cooldown", event.CooldownViolated{
			MinutesEarly: rng.Intn(120) + 1,
		}, pick(users))
	case 4:
		r.Publish(ctx, event.TypeTipCompleted, "sim-tips", event.TipCompleted{
			FromUserID: pick(users),
			ToUserID:   pick(users),
			Amount:     gofakeit.Float64Range(5, 500),
		}, "")
	case 5:
		report := event.ScamReport{
			ReporterID: pick(users),
			Verified:   rng.Intn(4) == 0,
			Details:    gofakeit.Sentence(6),
		}
		switch rng.Intn(3) {
		case 0:
			report.AccusedID = pick(users)
		case 1:
			report.Casino = pick(casinos)
		default:
			report.Domain = pick(domains)
		}
		r.Publish(ctx, event.TypeScamReported, "sim-reports", report, report.ReporterID)
	default:
		r.Publish(ctx, event.TypeAccountabilitySuccess, "sim-accountability", event.AccountabilitySuccess{
			Streak: rng.Intn(30) + 1,
		}, pick(users))
	}
}
