// Copyright 2025 EURECOM
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

package tracker

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

func (app *TrackerApp) handleInitTracker(w http.ResponseWriter, r *http.Request) {

	config := &FleetConfig{}

	if app.config.FleetConfig != nil {
		// avoid cli config to override the default one
		config = app.config.FleetConfig
	} else {
		if r.Body != nil {
			err := json.NewDecoder(r.Body).Decode(config)
			if err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
			}
		} else {
			http.Error(w, "Missing request body", http.StatusBadRequest)
		}
	}

	err := app.InitNewInstance(config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}

	err = json.NewEncoder(w).Encode(TrackerStatusResponse{
		Status: app.status,
	})
	if err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}

}

func (app *TrackerApp) handleStartTracker(w http.ResponseWriter, r *http.Request) {
	err := app.StartTracking()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
	err = json.NewEncoder(w).Encode(TrackerStatusResponse{
		Status: app.status,
	})
	if err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

func (app *TrackerApp) handleStatusTracker(w http.ResponseWriter, r *http.Request) {
	err := json.NewEncoder(w).Encode(TrackerStatusResponse{
		Status: app.GetCurrentStatus(),
	})
	if err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

func (app *TrackerApp) handleStopTracker(w http.ResponseWriter, r *http.Request) {
	err := app.StopTracking()
	if err != nil {
		http.Error(w, "could not stop tracker", http.StatusInternalServerError)
		return
	}
}

func (app *TrackerApp) startHttpServer() {
	app.wg.Add(1)

	router := mux.NewRouter()

	router.HandleFunc("/registration-tracker/v1/configure", app.handleInitTracker)
	router.HandleFunc("/registration-tracker/v1/start", app.handleStartTracker)
	router.HandleFunc("/registration-tracker/v1/status", app.handleStatusTracker)
	router.HandleFunc("/registration-tracker/v1/stop", app.handleStopTracker)

	app.server = &http.Server{Addr: fmt.Sprintf(":%d", app.config.OamPort), Handler: router}

	go func() {
		defer func() {
			_ = recover()
			app.wg.Done()
		}()

		log.Printf("serving tracker api on :%d", app.config.OamPort)
		// always returns error. ErrServerClosed on graceful close
		if err := app.server.ListenAndServe(); err != http.ErrServerClosed {
			// unexpected error. port in use?
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

}

func (app *TrackerApp) stopHttpServer() {
	if app.server != nil {
		err := app.server.Close()
		if err != nil {
			log.Default().Printf("could not stop oam server")
		}
	}

}
