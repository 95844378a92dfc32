// stockcal-gen regenerates the AI-written StockCal datasets and publishes
// them to the repository the site is served from.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("stockcal-gen failed")
		os.Exit(1)
	}
}
