// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// readfile prints stored scorecards as JSON, followed by anything that
// would be dropped when the scorecard is opened.
//
// Usage: readfile [-data-dir data] [id ...]
//
// Without ids, every stored scorecard is printed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ttbt-io/scorecard/backend"
)

var (
	dataDir = flag.String("data-dir", "data", "Directory for scorecard data")
)

func main() {
	flag.Parse()

	s, err := backend.OpenStorage(*dataDir, os.Getenv(backend.MasterKeyEnv), false)
	if err != nil {
		log.Fatalf("Critical Security Error: %v. Refusing to read encrypted data in unencrypted mode.", err)
	}
	store := backend.NewScorecardStore(*dataDir, s)

	ids := flag.Args()
	if len(ids) == 0 {
		for summary, err := range store.ListScorecards() {
			if err != nil {
				log.Fatal(err)
			}
			ids = append(ids, summary.ID)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, id := range ids {
		g, err := store.LoadScorecard(id)
		if err != nil {
			log.Printf("%s: %v", id, err)
			continue
		}
		fmt.Printf("=========== %s ===========\n", id)
		if err := enc.Encode(g); err != nil {
			log.Printf("JSON: %s: %v", id, err)
		}
		for _, w := range g.Validate() {
			fmt.Printf("warning: %s\n", w)
		}
	}
}
