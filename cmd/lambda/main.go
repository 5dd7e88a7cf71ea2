package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/berniyo/receeco-lambda/internal/config"
	"github.com/berniyo/receeco-lambda/internal/handler"
	"github.com/berniyo/receeco-lambda/pkg/receeco"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Env, cfg.LogLevel)
	log.Info().Str("env", cfg.Env).Str("base_url", cfg.Receeco.BaseURL).Msg("starting receipt lambda")

	client, err := receeco.New(cfg.Receeco, receeco.WithLogger(log.Logger))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure receeco client")
	}

	opts := []handler.Option{handler.WithLogger(log.Logger)}
	if cfg.Callback.URL != "" {
		callbackSender, err := handler.NewHTTPSCallbackSender(cfg.Callback.URL, cfg.Callback.Secret, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure callback sender")
		}
		opts = append(opts, handler.WithCallbackSender(callbackSender))
	}

	processor := handler.NewProcessor(client, opts...)

	lambda.Start(processor.Handle)
}

func setupLogger(env, level string) {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		zerolog.SetGlobalLevel(lvl)
	} else if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
