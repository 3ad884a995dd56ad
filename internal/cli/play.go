package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"festquiz/internal/app"
	"festquiz/internal/config"
	"festquiz/internal/domain"
	"festquiz/internal/infra/quizapi"
	"festquiz/internal/infra/roomapi"
	transport "festquiz/internal/transport/http"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type playOptions struct {
	room       string
	amount     int
	category   string
	difficulty string
}

// NewPlayCmd runs an interactive quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	opts := playOptions{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz, optionally in sync with a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.room, "room", "", "room code to follow")
	cmd.Flags().IntVar(&opts.amount, "amount", 10, "number of questions")
	cmd.Flags().StringVar(&opts.category, "category", "", "category id, or random/modern")
	cmd.Flags().StringVar(&opts.difficulty, "difficulty", "", "easy, medium or hard")
	return cmd
}

func runPlay(ctx context.Context, configPath string, opts playOptions, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	archive, _ := deps.archive(cfg)
	fetchTimeout := config.TTLDuration(cfg.QuizAPI.FetchTimeout, 0)
	quizClient := quizapi.NewClient(cfg.QuizAPI.BaseURL)
	if fetchTimeout > 0 {
		quizClient.SetTimeout(fetchTimeout)
	}
	source := deps.questionSource(cfg, quizClient)
	view := newTextView(out)

	controllerOpts := []app.Option{
		app.WithArchive(archive),
		app.WithFetchTimeout(fetchTimeout),
		app.WithTimings(
			config.TTLDuration(cfg.Room.PollInterval, 0),
			config.TTLDuration(cfg.Room.PollTimeout, 0),
			config.TTLDuration(cfg.Room.LockDelay, 0),
		),
	}

	var observers app.Observers
	if opts.room != "" {
		rooms := roomapi.NewClient(cfg.Room.BaseURL)
		controllerOpts = append(controllerOpts, app.WithRoom(opts.room, rooms))
		if cfg.Room.PublishQuestions {
			observers = append(observers, roomapi.NewPublisher(rooms, opts.room))
		}
	}

	var server *http.Server
	if cfg.Spectator.Addr != "" {
		hub := transport.NewHub()
		observers = append(observers, hub)
		server = &http.Server{
			Addr:              cfg.Spectator.Addr,
			Handler:           transport.NewRouter(hub, archive),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Spectator.Addr).Msg("spectator server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("spectator server stopped")
			}
		}()
	}
	if len(observers) > 0 {
		controllerOpts = append(controllerOpts, app.WithObserver(observers))
	}

	controller := app.NewController(source, view, controllerOpts...)
	defer controller.Close()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	query := func() domain.Query {
		return domain.Query{
			Amount:     opts.amount,
			Category:   quizapi.ResolveCategory(rnd, opts.category),
			Difficulty: opts.difficulty,
		}
	}

	// Start failures are already shown by the view; the user can retry with s.
	_ = controller.Start(ctx, query())
	runInputLoop(ctx, controller, query, in)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("spectator server shutdown")
		}
	}
	return nil
}

func runInputLoop(ctx context.Context, controller *app.Controller, query func() domain.Query, in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("interrupted, leaving quiz")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch line {
			case "", "n", "next":
				if err := controller.Next(); errors.Is(err, domain.ErrNoSession) {
					log.Debug().Msg("no quiz running")
				}
			case "r", "restart":
				controller.Restart()
			case "s", "start":
				err := controller.Start(ctx, query())
				if errors.Is(err, domain.ErrSessionActive) {
					log.Info().Msg("a quiz is already running, press r to restart")
				}
			case "q", "quit", "exit":
				return
			default:
				log.Debug().Str("input", line).Msg("unknown command")
			}
		}
	}
}
