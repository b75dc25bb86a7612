package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"strings"
	"time"

	"github.com/hjson/hjson-go"

	"github.com/takeshi-0987/ipatlas/atlaslib"
	"github.com/takeshi-0987/ipatlas/sources"
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen            string            `json:"listen"`
	BasicAuthUser     string            `json:"basic_auth_user"`
	BasicAuthPassword string            `json:"basic_auth_password"`
	Databases         []configDatabase  `json:"databases"`
	Cache             configCache       `json:"cache"`
	Query             configQuery       `json:"query"`
	Display           configDisplay     `json:"display"`
	SearchURLs        []configSearchURL `json:"search_urls"`
}

type configDatabase struct {
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	Kind     string            `json:"kind"`
	Enabled  *bool             `json:"enabled"`
	Priority int               `json:"priority"`
	Extra    map[string]string `json:"extra"`
}

func (c configDatabase) GetEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type configCache struct {
	Enabled *bool    `json:"enabled"`
	TTL     duration `json:"ttl"`
	MaxSize int      `json:"max_size"`
}

func (c configCache) GetEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type configQuery struct {
	Strategy           string `json:"strategy"`
	StopOnFirstSuccess *bool  `json:"stop_on_first_success"`
	SkipPrivateIPs     *bool  `json:"skip_private_ips"`
	SkipSpecialIPs     *bool  `json:"skip_special_ips"`
	MaxConcurrency     int    `json:"max_concurrency"`
}

func (c configQuery) GetStrategy() atlaslib.Strategy {
	if strings.ToLower(c.Strategy) == string(atlaslib.StrategyParallel) {
		return atlaslib.StrategyParallel
	}

	return atlaslib.StrategySequential
}

type configDisplay struct {
	FormatString string `json:"format_string"`
	ShowASN      bool   `json:"show_asn"`
	ShowNetwork  *bool  `json:"show_network"`
}

type configSearchURL struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func defaultTrue(v *bool) bool {
	return v == nil || *v
}

func (c *config) Descriptors() []sources.Descriptor {
	rv := make([]sources.Descriptor, 0, len(c.Databases))

	for _, v := range c.Databases {
		rv = append(rv, sources.Descriptor{
			Name:     v.Name,
			Path:     v.Path,
			Kind:     sources.ParseKind(v.Kind),
			Enabled:  v.GetEnabled(),
			Priority: v.Priority,
			Extra:    v.Extra,
		})
	}

	return rv
}

func (c *config) EngineOptions() atlaslib.Options {
	searchURLs := make([]atlaslib.SearchURL, 0, len(c.SearchURLs))

	for _, v := range c.SearchURLs {
		searchURLs = append(searchURLs, atlaslib.SearchURL{
			Name: v.Name,
			URL:  v.URL,
		})
	}

	return atlaslib.Options{
		Strategy:           c.Query.GetStrategy(),
		StopOnFirstSuccess: defaultTrue(c.Query.StopOnFirstSuccess),
		SkipPrivateIPs:     defaultTrue(c.Query.SkipPrivateIPs),
		SkipSpecialIPs:     defaultTrue(c.Query.SkipSpecialIPs),
		MaxConcurrency:     c.Query.MaxConcurrency,
		CacheEnabled:       c.Cache.GetEnabled(),
		CacheTTL:           c.Cache.TTL.Duration,
		CacheMaxSize:       c.Cache.MaxSize,
		FormatString:       c.Display.FormatString,
		ShowASN:            c.Display.ShowASN,
		ShowNetwork:        defaultTrue(c.Display.ShowNetwork),
		SearchURLs:         searchURLs,
	}
}

func parseConfig(path string) (*config, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	conf := config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	rawBytes, _ := json.Marshal(rawMap)

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("cannot map config: %w", err)
	}

	if conf.Listen != "" {
		if _, _, err := net.SplitHostPort(conf.Listen); err != nil {
			return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
		}
	}

	switch strings.ToLower(conf.Query.Strategy) {
	case "", string(atlaslib.StrategySequential), string(atlaslib.StrategyParallel):
	default:
		return nil, fmt.Errorf("unknown query strategy %s", conf.Query.Strategy)
	}

	seenNames := map[string]struct{}{}

	for _, v := range conf.Databases {
		if v.Name == "" {
			return nil, fmt.Errorf("database with path %s has no name", v.Path)
		}

		if _, ok := seenNames[v.Name]; ok {
			return nil, fmt.Errorf("database name %s is duplicated", v.Name)
		}

		seenNames[v.Name] = struct{}{}
	}

	return &conf, nil
}
