// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/readium/readium-shelf-server/epub"
)

// showHelpAndExit displays some help and exits.
func showHelpAndExit() {

	fmt.Println("shelfingest sends a publication to a shelf server")
	fmt.Println("-input        source epub file path")
	fmt.Println("-server       http endpoint of the shelf server")
	fmt.Println("-login        login (shelf server)")
	fmt.Println("-password     password (shelf server)")
	fmt.Println("[-filename]   optional, file name kept on the shelf; if omitted the base name of the input is used")
	fmt.Println("[-help] :     help information")
	os.Exit(0)
}

// exitWithError outputs an error message and exits.
func exitWithError(context string, err error) {

	fmt.Println(context, ":", err.Error())
	os.Exit(1)
}

// uploadPublication posts the input file to the shelf server and
// returns the identifier under which the server catalogued it.
func uploadPublication(inputPath, server, filename, username, password string) (string, error) {

	file, err := os.Open(inputPath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	fi, err := file.Stat()
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}
	uploadURL, err := url.JoinPath(server, "books", filename)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", uploadURL, file)
	if err != nil {
		return "", err
	}
	req.ContentLength = fi.Size()
	req.Header.Set("Content-Type", epub.ContentTypeEpub)
	req.SetBasicAuth(username, password)

	client := &http.Client{
		Timeout: 60 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("the server returned an error %d", resp.StatusCode)
	}

	var id string
	err = json.NewDecoder(resp.Body).Decode(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func main() {
	var inputPath = flag.String("input", "", "source epub file path")
	var server = flag.String("server", "", "http endpoint of the shelf server")
	var username = flag.String("login", "", "login (shelf server)")
	var password = flag.String("password", "", "password (shelf server)")
	var filename = flag.String("filename", "", "optional, file name kept on the shelf")

	var help = flag.Bool("help", false, "shows information")

	if !flag.Parsed() {
		flag.Parse()
	}
	if *help || *inputPath == "" || *server == "" {
		showHelpAndExit()
	}

	if *username == "" || *password == "" {
		exitWithError("Parameters", errors.New("incorrect parameters, the shelf server needs a login and password, for more information type 'shelfingest -help' "))
	}

	name := *filename
	if name == "" {
		name = filepath.Base(*inputPath)
	}

	// send the publication to the shelf
	id, err := uploadPublication(*inputPath, *server, name, *username, *password)
	if err != nil {
		exitWithError("Send a publication", err)
	}

	fmt.Println("The publication was added to the shelf:", id)
	os.Exit(0)
}
