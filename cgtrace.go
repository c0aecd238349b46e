package main

import (
	"log"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/cskr/pubsub"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/domalab/cgtrace/daemon/cmd"
	"github.com/domalab/cgtrace/daemon/domain"
	"github.com/domalab/cgtrace/daemon/services/config"
)

var Version string

var cli struct {
	LogsDir  string `default:"/var/log" help:"directory to store logs"`
	HTTPPort int    `default:"0" help:"override the HTTP query surface port"`

	Boot   cmd.Boot      `cmd:"" default:"1" help:"start collection"`
	Config cmd.ConfigCmd `cmd:"" help:"manage configuration"`
}

func main() {
	kctx := kong.Parse(&cli)

	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(cli.LogsDir, "cgtrace.log"),
		MaxSize:    1,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})

	cfg, err := config.New().Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg.Version = Version

	if cli.HTTPPort != 0 {
		cfg.HTTPServer.Port = cli.HTTPPort
	}

	err = kctx.Run(&domain.Context{
		Config: cfg,
		Hub:    pubsub.New(623),
	})
	kctx.FatalIfErrorf(err)
}
