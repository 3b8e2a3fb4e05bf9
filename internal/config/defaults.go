package config

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

func applyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		&SiteDefaultApplier{},
		&DataDefaultApplier{},
		&SitemapDefaultApplier{},
		&SourceDefaultApplier{},
		&RetryDefaultApplier{},
		&GeocodeDefaultApplier{},
		&ServeDefaultApplier{},
		&LoggingDefaultApplier{},
	}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// SiteDefaultApplier handles Site defaults.
type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "site" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "https://e-radio.github.io"
	}
	if cfg.Site.StaticPages == nil {
		cfg.Site.StaticPages = []string{"/about/", "/privacy/", "/contact/"}
	}
	return nil
}

type DataDefaultApplier struct{}

func (DataDefaultApplier) Domain() string { return "data" }

func (DataDefaultApplier) ApplyDefaults(cfg *Config) error {
	d := &cfg.Data
	if d.StationsPath == "" {
		d.StationsPath = "src/data/stations-gr.json"
	}
	if d.IconsDir == "" {
		d.IconsDir = "public/station-icons"
	}
	if d.IconsURLPrefix == "" {
		d.IconsURLPrefix = "/station-icons"
	}
	if d.StateDB == "" {
		d.StateDB = "tools/state.db"
	}
	if d.CityRegionMap == "" {
		d.CityRegionMap = "tools/city-region-map.json"
	}
	return nil
}

type SitemapDefaultApplier struct{}

func (SitemapDefaultApplier) Domain() string { return "sitemap" }

func (SitemapDefaultApplier) ApplyDefaults(cfg *Config) error {
	s := &cfg.Sitemap
	if s.OutputPath == "" {
		s.OutputPath = "public/sitemap.xml"
	}
	if s.HomePageSize <= 0 {
		s.HomePageSize = 50
	}
	if s.HighQualityPageSize <= 0 {
		s.HighQualityPageSize = s.HomePageSize
	}
	if s.BucketPageSize <= 0 {
		s.BucketPageSize = 24
	}
	if s.HighQualityBitrate <= 0 {
		s.HighQualityBitrate = 320
	}
	if s.Placeholder == "" {
		s.Placeholder = "unknown"
	}
	if s.DefaultGenre == "" {
		s.DefaultGenre = "Other"
	}
	if s.FallbackSlug == "" {
		s.FallbackSlug = "other"
	}
	return nil
}

type SourceDefaultApplier struct{}

func (SourceDefaultApplier) Domain() string { return "source" }

func (SourceDefaultApplier) ApplyDefaults(cfg *Config) error {
	s := &cfg.Source
	if s.ServersURL == "" {
		s.ServersURL = "https://all.api.radio-browser.info/json/servers"
	}
	if s.CountryCode == "" {
		s.CountryCode = "GR"
	}
	if s.UserAgent == "" {
		s.UserAgent = "Mozilla/5.0 (compatible; E-RadioBot/1.0; +https://e-radio.github.io)"
	}
	if s.Timeout == "" {
		s.Timeout = "20s"
	}
	return nil
}

type RetryDefaultApplier struct{}

func (RetryDefaultApplier) Domain() string { return "retry" }

func (RetryDefaultApplier) ApplyDefaults(cfg *Config) error {
	r := &cfg.Retry
	if mode := NormalizeRetryBackoff(string(r.Backoff)); mode != "" {
		r.Backoff = mode
	} else {
		r.Backoff = RetryBackoffExponential
	}
	if r.InitialDelay == "" {
		r.InitialDelay = "1s"
	}
	if r.MaxDelay == "" {
		r.MaxDelay = "30s"
	}
	if r.MaxRetries == 0 {
		r.MaxRetries = 3
	}
	return nil
}

type GeocodeDefaultApplier struct{}

func (GeocodeDefaultApplier) Domain() string { return "geocode" }

func (GeocodeDefaultApplier) ApplyDefaults(cfg *Config) error {
	g := &cfg.Geocode
	if g.URL == "" {
		g.URL = "https://nominatim.openstreetmap.org/reverse"
	}
	if g.Language == "" {
		g.Language = "en"
	}
	if g.Sleep == "" {
		g.Sleep = "1s" // Nominatim usage policy: at most one request per second
	}
	return nil
}

type ServeDefaultApplier struct{}

func (ServeDefaultApplier) Domain() string { return "serve" }

func (ServeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ":8080"
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "eradio.stations.updated"
	}
	if cfg.Notify.Stream == "" {
		cfg.Notify.Stream = "ERADIO"
	}
	if cfg.Notify.KVBucket == "" {
		cfg.Notify.KVBucket = "eradio-status"
	}
	return nil
}

type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}
