// Copyright (c) 2025 The veil developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jessevdk/go-flags"
)

const (
	DefaultLogFilename    = "veild.log"
	defaultConfigFilename = "veild.conf"
)

var (
	DefaultHomeDir    = AppDataDir("veild", false)
	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
)

// Config defines the configuration options for the wallet core.
//
// See LoadConfig for details on the configuration load process.
type Config struct {
	ShowVersion bool   `short:"v" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir     string `short:"d" long:"datadir" description:"Directory to store data"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	LogLevel    string `short:"l" long:"loglevel" description:"Set the logging level [debug, info, warning, error, alert, critical, emergency]." default:"info"`
	Journal     string `short:"j" long:"journal" description:"Replay ledger events from this JSON journal file and exit"`
	Testnet     bool   `short:"t" long:"testnet" description:"Use the test network"`
}

// LoadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig() (*Config, error) {
	// Pre-parse the command line options to see if an alternative config
	// file was specified.
	preCfg := Config{}
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.IgnoreUnknown)
	if _, err := preParser.Parse(); err != nil {
		return nil, err
	}

	cfg := Config{}
	parser := flags.NewParser(&cfg, flags.Default)

	configFile := defaultConfigFile
	if preCfg.ConfigFile != "" {
		configFile = cleanAndExpandPath(preCfg.ConfigFile)
	}
	if fileExists(configFile) {
		iniParser := flags.NewIniParser(parser)
		if err := iniParser.ParseFile(configFile); err != nil {
			return nil, err
		}
	} else if preCfg.ConfigFile != "" {
		return nil, errors.New("config file does not exist")
	}

	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultHomeDir
	} else {
		cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	}
	if cfg.Testnet {
		cfg.DataDir = filepath.Join(cfg.DataDir, "testnet")
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, "logs")
	} else {
		cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, err
	}

	log.Debugf("Using data directory %s", cfg.DataDir)
	return &cfg, nil
}

// AppDataDir returns an operating system specific directory to be used
// for storing application data for an application.
func AppDataDir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}
	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := string(unicodeToUpper(appName[0])) + appName[1:]
	appNameLower := string(unicodeToLower(appName[0])) + appName[1:]

	homeDir := ""
	usr, err := os.UserHomeDir()
	if err == nil {
		homeDir = usr
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData != "" {
			return filepath.Join(appData, appNameUpper)
		}
	case "darwin":
		if homeDir != "" {
			return filepath.Join(homeDir, "Library", "Application Support", appNameUpper)
		}
	default:
		if homeDir != "" {
			return filepath.Join(homeDir, "."+appNameLower)
		}
	}
	return "."
}

// cleanAndExpandPath expands environment variables and leading ~ in
// the passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", homeDir, 1)
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}

func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

func unicodeToUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func unicodeToLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
