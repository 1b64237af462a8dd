// Copyright (c) 2016 Readium Foundation
//
// Redistribution and use in source and binary forms, with or without modification,
// are permitted provided that the following conditions are met:
//
// 1. Redistributions of source code must retain the above copyright notice, this
//    list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright notice,
//    this list of conditions and the following disclaimer in the documentation and/or
//    other materials provided with the distribution.
// 3. Neither the name of the organization nor the names of its contributors may be
//    used to endorse or promote products derived from this software without specific
//    prior written permission
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND
// ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED
// WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT OWNER OR CONTRIBUTORS BE LIABLE FOR
// ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
// (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES;
// LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND
// ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
// (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE OF THIS
// SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

type Configuration struct {
	ShelfServer  ServerInfo        `yaml:"shelf"`
	Storage      Storage           `yaml:"storage"`
	Ingestion    Ingestion         `yaml:"ingestion"`
	Links        map[string]string `yaml:"links"`
	Localization Localization      `yaml:"localization"`
	Logging      Logging           `yaml:"logging"`
}

type ServerInfo struct {
	Host          string `yaml:"host,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	AuthFile      string `yaml:"auth_file"`
	ReadOnly      bool   `yaml:"readonly,omitempty"`
	PublicBaseUrl string `yaml:"public_base_url,omitempty"`
	Database      string `yaml:"database,omitempty"`
	Directory     string `yaml:"directory,omitempty"`
}

type FileSystem struct {
	Directory string `yaml:"directory"`
	URL       string `yaml:"url,omitempty"`
}

type Storage struct {
	FileSystem FileSystem `yaml:"filesystem"`
	AccessId   string     `yaml:"access_id"`
	DisableSSL bool       `yaml:"disable_ssl"`
	PathStyle  bool       `yaml:"path_style"`
	Mode       string
	Secret     string
	Endpoint   string
	Bucket     string
	Region     string
	Token      string
}

type Ingestion struct {
	ConcurrentWorkers     int  `yaml:"concurrent_workers,omitempty"`
	WordsPerMinute        int  `yaml:"words_per_minute,omitempty"`
	ThumbnailWidth        int  `yaml:"thumbnail_width,omitempty"`
	RenderedCoverFallback bool `yaml:"rendered_cover_fallback,omitempty"`
	SweepIntervalMinutes  int  `yaml:"sweep_interval_minutes,omitempty"`
}

type Localization struct {
	Languages       []string `yaml:"languages"`
	Folder          string   `yaml:"folder"`
	DefaultLanguage string   `yaml:"default_language"`
}

type Logging struct {
	Directory      string `yaml:"directory"`
	SlackToken     string `yaml:"slack_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
}

var Config Configuration

func ReadConfig(configFileName string) {
	filename, _ := filepath.Abs(configFileName)
	yamlFile, err := ioutil.ReadFile(filename)

	if err != nil {
		panic("Can't read config file: " + configFileName)
	}

	err = yaml.Unmarshal(yamlFile, &Config)

	if err != nil {
		panic("Can't unmarshal config. " + configFileName + " -> " + err.Error())
	}
}

func SetPublicUrls() error {
	var shelfPublicBaseUrl, shelfHost string
	var shelfPort int
	var err error

	if shelfHost = Config.ShelfServer.Host; shelfHost == "" {
		shelfHost, err = os.Hostname()
		if err != nil {
			return err
		}
	}

	if shelfPort = Config.ShelfServer.Port; shelfPort == 0 {
		shelfPort = 8991
	}

	if shelfPublicBaseUrl = Config.ShelfServer.PublicBaseUrl; shelfPublicBaseUrl == "" {
		shelfPublicBaseUrl = "http://" + shelfHost + ":" + strconv.Itoa(shelfPort)
		Config.ShelfServer.PublicBaseUrl = shelfPublicBaseUrl
	}

	return err
}

// GetDatabase splits a database uri into the sql driver name and the
// data source name the driver expects.
func GetDatabase(uri string) (string, string) {
	if uri == "" {
		uri = "sqlite3://file::memory:?cache=shared"
	}
	parts := strings.SplitN(uri, "://", 2)
	if len(parts) != 2 {
		return "sqlite3", uri
	}
	driver, cnxn := parts[0], parts[1]
	switch driver {
	case "postgres", "postgresql":
		// lib/pq accepts the full url as its data source name
		return "postgres", uri
	case "sqlserver", "mssql":
		return "sqlserver", uri
	default:
		// mysql and sqlite3 drivers want the url scheme stripped
		if driver == "mysql" && !strings.Contains(cnxn, "parseTime") {
			if strings.Contains(cnxn, "?") {
				cnxn += "&parseTime=true"
			} else {
				cnxn += "?parseTime=true"
			}
		}
		return driver, cnxn
	}
}
