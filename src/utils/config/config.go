package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "LAUNCHPAD_"

// Config stores global configuration
type Config struct {
	// Logging level
	LogLevel string

	Network     Network
	Signer      Signer
	Addresses   Addresses
	Artifacts   Artifacts
	Explorer    Explorer
	Retry       Retry
	Batch       Batch
	Proxy       Proxy
	Distributor Distributor
	Smoke       Smoke
	Monitoring  Monitoring
}

func setDefaults() {
	viper.SetDefault("LogLevel", "INFO")

	setNetworkDefaults()
	setSignerDefaults()
	setAddressesDefaults()
	setArtifactsDefaults()
	setExplorerDefaults()
	setRetryDefaults()
	setBatchDefaults()
	setProxyDefaults()
	setDistributorDefaults()
	setSmokeDefaults()
	setMonitoringDefaults()
}

func Default() (config *Config) {
	config, _ = Load("")
	return
}

func BindEnv(path []string, val reflect.Value) {
	if val.Kind() != reflect.Struct {
		// Base types
		key := strings.Join(path, ".")
		env := ENV_PREFIX + strcase.ToScreamingSnake(strings.Join(path, "_"))
		err := viper.BindEnv(key, env)
		if err != nil {
			panic(err)
		}
		return
	}

	// Iterates over struct fields
	for i := 0; i < val.NumField(); i++ {
		newPath := make([]string, len(path))
		copy(newPath, path)
		newPath = append(newPath, val.Type().Field(i).Name)
		BindEnv(newPath, val.Field(i))
	}
}

func defaultDecoderConfig(output interface{}) *mapstructure.DecoderConfig {
	c := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}
	return c
}

// Sets environment variables listed in the file. A missing file isn't an error.
func LoadEnvFile(path string) (err error) {
	err = godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return
}

// Load configuration from file and env
func Load(filename string) (config *Config, err error) {
	// Variables from .env in the working directory, if present. Already set ones take precedence.
	err = LoadEnvFile(".env")
	if err != nil {
		return nil, err
	}

	viper.SetConfigType("json")

	setDefaults()

	// Visits every field and registers upper snake case ENV name for it
	// Works with embedded structs
	BindEnv([]string{}, reflect.ValueOf(Config{}))

	// Hardhat scripts select the network with HARDHAT_NETWORK, it's used when the prefixed variable isn't set
	err = viper.BindEnv("Network.Name", ENV_PREFIX+"NETWORK_NAME", "HARDHAT_NETWORK")
	if err != nil {
		return nil, err
	}

	// Empty filename means we use default values
	if filename != "" {
		var content []byte
		/* #nosec */
		content, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		err = viper.ReadConfig(bytes.NewBuffer(content))
		if err != nil {
			return nil, err
		}
	}

	config = new(Config)
	decoder, err := mapstructure.NewDecoder(defaultDecoderConfig(config))
	if err != nil {
		return nil, err
	}

	err = decoder.Decode(viper.AllSettings())
	if err != nil {
		return nil, err
	}

	return
}
