/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package main is the entry point for starting the workflow engine's HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/MitchMcQuinn/LUNA/internal/system/config"
	"github.com/MitchMcQuinn/LUNA/internal/system/log"
)

func main() {
	logger := log.GetLogger()

	home := getHomeDir(logger)

	cfg, err := config.LoadConfig(path.Join(home, "repository/conf/deployment.yaml"))
	if err != nil {
		logger.Fatal("Failed to load configurations", log.Error(err))
	}

	mux := http.NewServeMux()
	registerServices(context.Background(), logger, cfg, mux)

	startHTTPServer(logger, cfg, mux)
}

// getHomeDir resolves the project home directory, preferring the -home flag
// over the current working directory.
func getHomeDir(logger *log.Logger) string {
	homeFlag := flag.String("home", "", "Path to the project home directory")
	flag.Parse()

	if *homeFlag != "" {
		return *homeFlag
	}
	dir, err := os.Getwd()
	if err != nil {
		logger.Fatal("Failed to get current working directory", log.Error(err))
	}
	return dir
}

// startHTTPServer builds and runs the HTTP server, blocking until it exits.
func startHTTPServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux) {
	wrappedMux := log.AccessLogHandler(logger, mux)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           wrappedMux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("Workflow engine server started", log.String("address", addr))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Failed to serve HTTP requests", log.Error(err))
	}
}
