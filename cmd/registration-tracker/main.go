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

package main

import (
	"flag"

	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the tracker configuration file")
	flag.Parse()

	app := tracker.NewTrackerApp(*configPath)
	app.Run()
}
