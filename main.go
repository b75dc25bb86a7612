package main

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/takeshi-0987/ipatlas/atlaslib"
	"github.com/takeshi-0987/ipatlas/sources"
)

var version = "dev"

var (
	app = kingpin.New(
		"ipatlas",
		"Multi-source local-database IP geolocation engine")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("IPATLAS_DEBUG").
		Bool()
	configFile = app.Flag("config", "Path to the config.").
			Short('c').
			Envar("IPATLAS_CONFIG").
			Required().
			ExistingFile()

	resolveCmd  = app.Command("resolve", "Resolve given IP addresses and exit.")
	resolveJSON = resolveCmd.Flag("json", "Print full per-source results as JSON.").
			Short('j').
			Bool()
	resolveIPs = resolveCmd.Arg("ip", "IP addresses to resolve.").
			Required().
			Strings()

	serveCmd = app.Command("serve", "Start the HTTP API server.")
)

func init() {
	app.Version(version)
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.WarnLevel)
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	conf, err := parseConfig(*configFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	registry := sources.Load(afero.NewOsFs(), conf.Descriptors())

	engine, err := atlaslib.NewEngine(registry, newLogger(), conf.EngineOptions())
	if err != nil {
		log.Fatal(err.Error())
	}
	defer engine.Shutdown()

	switch command {
	case resolveCmd.FullCommand():
		runResolve(engine, *resolveIPs, *resolveJSON)
	case serveCmd.FullCommand():
		if err := runServe(engine, conf); err != nil {
			log.Fatal(err.Error())
		}
	}
}

func runResolve(engine *atlaslib.Engine, ips []string, asJSON bool) {
	ctx, cancel := makeRootContext()
	defer cancel()

	if !asJSON {
		for _, ip := range ips {
			location, err := engine.FormatLocation(ctx, ip)
			if err != nil {
				log.Fatal(err.Error())
			}

			fmt.Printf("%s\t%s\n", ip, location)
		}

		return
	}

	results := make(map[string][]atlaslib.QueryResult, len(ips))

	for _, ip := range ips {
		resolved, err := engine.Resolve(ctx, ip)
		if err != nil {
			log.Fatal(err.Error())
		}

		results[ip] = resolved
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(results) // nolint: errcheck
}
