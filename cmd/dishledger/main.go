// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command dishledger browses the dish and sales tables of a restaurant
// database with per-column filters.
package main

import (
	"context"
	"log"

	"fyne.io/fyne/v2/app"

	"github.com/magpierre/dishledger/internal/config"
	"github.com/magpierre/dishledger/internal/store"
	"github.com/magpierre/dishledger/windows"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	s, err := store.Open(ctx, cfg.DatabaseDSN)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.DatabaseDSN, err)
	}

	a := app.NewWithID("com.github.magpierre.dishledger")
	w, err := windows.NewMainWindow(a, cfg, s)
	if err != nil {
		s.Close()
		log.Fatalf("Failed to load tables: %v", err)
	}
	w.ShowAndRun()

	if err := w.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
