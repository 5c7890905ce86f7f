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

// Package graphstore implements the Graph Store Adapter (spec.md §4.A): typed CRUD
// over a Neo4j property graph holding the workflow definition (Step/NEXT nodes and
// edges) and the per-session state document.
package graphstore

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/MitchMcQuinn/LUNA/internal/system/config"
	"github.com/MitchMcQuinn/LUNA/internal/system/log"
)

var (
	instance *Provider
	once     sync.Once
)

// Provider owns the process-wide Neo4j driver. Like the database providers it's
// modeled on, callers never close what GetAdapter returns — the provider manages
// the connection pool for the life of the process and closes it on interrupt.
type Provider struct {
	mu      sync.RWMutex
	driver  neo4j.DriverWithContext
	adapter *Adapter
}

// GetProvider returns the process-wide graph store provider, initializing the
// Neo4j driver on first use.
func GetProvider(cfg config.GraphStoreConfig) (*Provider, error) {
	var initErr error
	once.Do(func() {
		instance = &Provider{}
		initErr = instance.initialize(cfg)
		instance.closeOnInterrupt()
	})
	return instance, initErr
}

func (p *Provider) initialize(cfg config.GraphStoreConfig) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "GraphStoreProvider"))

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPool
			c.MaxConnectionLifetime = time.Duration(cfg.MaxConnLifetimeSecs) * time.Second
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		logger.Error("Failed to verify graph store connectivity", log.Error(err))
		return fmt.Errorf("failed to verify graph store connectivity: %w", err)
	}

	p.mu.Lock()
	p.driver = driver
	p.adapter = newAdapter(driver, cfg.Database)
	p.mu.Unlock()

	logger.Info("Connected to graph store", log.String("uri", cfg.URI))
	return nil
}

// GetAdapter returns the typed Graph Store Adapter backed by this provider's driver.
func (p *Provider) GetAdapter() *Adapter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.adapter
}

func (p *Provider) closeOnInterrupt() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger := log.GetLogger()
		if err := p.Close(); err != nil {
			logger.Error("Error closing graph store connection", log.Error(err))
		}
	}()
}

// Close releases the underlying Neo4j driver's connection pool.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.driver == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := p.driver.Close(ctx)
	p.driver = nil
	p.adapter = nil
	return err
}
