package main

import (
	"context"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wongnai/ldapfixture/directory"
	"github.com/wongnai/ldapfixture/prom"
	"gopkg.in/alecthomas/kingpin.v2"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	FlagBind             = kingpin.Flag("bind", "LDAP bind (host:port, port 0 is ephemeral)").Short('b').Default("127.0.0.1:0").String()
	FlagBaseDns          = kingpin.Flag("base-dn", "Base DN served by the directory (repeatable)").Required().Strings()
	FlagSchemaFiles      = kingpin.Flag("schema", "Schema LDIF file merged into the server schema (repeatable)").Strings()
	FlagLdifFiles        = kingpin.Flag("ldif", "LDIF file imported at startup (repeatable)").Strings()
	FlagNoDefaultSchemas = kingpin.Flag("no-default-schemas", "Skip the built-in standard schema").Bool()
	FlagMetricsBind      = kingpin.Flag("metrics", "Prometheus bind").String()
	FlagLogLevel         = kingpin.Flag("level", "Log level").Default("info").String()
	FlagLogJson          = kingpin.Flag("json", "JSON Output").Default("true").Bool()
)

var factory *directory.Factory
var metricServer *http.Server

func startMetric(server *directory.Server) {
	log.Info().Msgf("Starting metrics server on %s", *FlagMetricsBind)
	prometheus.Register(prometheus.NewGoCollector())
	prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	prometheus.Register(prom.NewLdapCollector(server))
	metricServer = &http.Server{
		Addr:         *FlagMetricsBind,
		Handler:      promhttp.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := metricServer.ListenAndServe(); err != nil {
		log.Error().Err(err).Msg("Metric server error")
	}
}

func main() {
	godotenv.Load()
	kingpin.CommandLine.DefaultEnvars()
	kingpin.Parse()

	if !*FlagLogJson {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	level, err := zerolog.ParseLevel(*FlagLogLevel)
	if err != nil {
		level = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(level)
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	factory = directory.NewFactory(*FlagBaseDns...)
	factory.Addr = *FlagBind
	factory.LoadDefaultSchemas = !*FlagNoDefaultSchemas
	for _, path := range *FlagSchemaFiles {
		factory.SchemaFiles = append(factory.SchemaFiles, directory.File(path))
	}
	for _, path := range *FlagLdifFiles {
		factory.LDIFFiles = append(factory.LDIFFiles, directory.File(path))
	}

	server, err := factory.Server()
	if err != nil {
		log.Fatal().Err(err).Msg("Fail to start directory server")
	}
	log.Info().Str("url", server.URL()).Int("entries", server.Entries()).Msg("Directory server ready")

	if *FlagMetricsBind != "" {
		go startMetric(server)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// wait for signal
	<-c

	log.Info().Msg("Stopping server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if metricServer != nil {
		log.Info().Msg("Waiting for metric server to stop")
		metricServer.Shutdown(ctx)
	}
	factory.Destroy()

	log.Info().Msg("Gracefully stopped server")
}
