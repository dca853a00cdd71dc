package config

import (
	"bytes"
	_ "embed"
	"text/template"

	cmtcfg "github.com/cometbft/cometbft/config"
	cmtos "github.com/cometbft/cometbft/libs/os"
)

var appTemplate *template.Template

func init() {
	var err error
	if appTemplate, err = template.New("appConfigTemplate").Parse(defaultAppTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFile writes CometBFT's config.toml followed by the [app] section.
func WriteConfigFile(configFilePath string, config *Config) {
	cmtcfg.WriteConfigFile(configFilePath, config.Config)

	var buffer bytes.Buffer
	if err := appTemplate.Execute(&buffer, config.App); err != nil {
		panic(err)
	}
	base := cmtos.MustReadFile(configFilePath)
	cmtos.MustWriteFile(configFilePath, append(base, buffer.Bytes()...), 0o644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in AppConfig in config/config.go.
//
//go:embed app.toml.tpl
var defaultAppTemplate string
