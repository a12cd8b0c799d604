package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envVar binds one environment variable, named without the prefix, to a
// Config field.
type envVar struct {
	name string
	set  func(value string) error
}

func envVars(cfg *Config) []envVar {
	srv, log, st, tpl, rt, adm, rl := &cfg.Server, &cfg.Logger, &cfg.Static,
		&cfg.Templates, &cfg.Routing, &cfg.Admin, &cfg.RateLimit

	return []envVar{
		{"SERVER_ADDRESS", setString(&srv.Address)},
		{"SERVER_READ_TIMEOUT", setDuration(&srv.ReadTimeout)},
		{"SERVER_WRITE_TIMEOUT", setDuration(&srv.WriteTimeout)},
		{"SERVER_IDLE_TIMEOUT", setDuration(&srv.IdleTimeout)},
		{"SERVER_SHUTDOWN_TIMEOUT", setDuration(&srv.ShutdownTimeout)},
		{"SERVER_BODY_LIMIT", setString(&srv.BodyLimit)},
		{"SERVER_GZIP", setBool(&srv.GZip)},
		{"SERVER_CORS", setBool(&srv.CORS)},
		{"SERVER_RECOVERY", setBool(&srv.Recovery)},
		{"SERVER_H2C", setBool(&srv.H2C)},

		{"LOGGER_LEVEL", setString(&log.Level)},
		{"LOGGER_ENCODING", setString(&log.Encoding)},
		{"LOGGER_OUTPUT_PATHS", setList(&log.OutputPaths)},
		{"LOGGER_ERROR_OUTPUT_PATHS", setList(&log.ErrorOutputPaths)},

		{"STATIC_PREFIX", setString(&st.Prefix)},
		{"STATIC_ROOT", setString(&st.Root)},
		{"STATIC_MAX_AGE", setInt(&st.MaxAge)},

		{"TEMPLATES_DIR", setString(&tpl.Dir)},
		{"TEMPLATES_WATCH", setBool(&tpl.Watch)},

		{"ROUTING_DEFAULT_METHODS", setList(&rt.DefaultMethods)},

		{"ADMIN_ENABLED", setBool(&adm.Enabled)},
		{"ADMIN_ADDRESS", setString(&adm.Address)},

		{"RATE_LIMIT_ENABLED", setBool(&rl.Enabled)},
		{"RATE_LIMIT_RATE", setInt(&rl.Rate)},
		{"RATE_LIMIT_BURST", setInt(&rl.Burst)},
	}
}

// applyEnv overrides cfg with every non-empty prefix+name variable.
func applyEnv(cfg *Config, prefix string) error {
	for _, v := range envVars(cfg) {
		name := prefix + v.name
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if err := v.set(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", name, err)
		}
	}
	return nil
}

func setString(p *string) func(string) error {
	return func(v string) error {
		*p = v
		return nil
	}
}

func setInt(p *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p = n
		return nil
	}
}

func setBool(p *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*p = b
		return nil
	}
}

func setDuration(p *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*p = d
		return nil
	}
}

// setList splits a comma separated value, dropping blank items
func setList(p *[]string) func(string) error {
	return func(v string) error {
		items := make([]string, 0, strings.Count(v, ",")+1)
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*p = items
		return nil
	}
}
