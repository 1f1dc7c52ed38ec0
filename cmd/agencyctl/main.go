/*
agencyctl - command-line access to the back-office API

PURPOSE:
  Lets managers and agents read clients, attendance and performance from a
  terminal, with the derived metrics computed locally, and download the
  same Excel reports the gateway serves.

COMMANDS:
  login                         exchange email/password for a token
  clients expiring              policies near their end date
  clients status <id>           policy countdown of one client
  attendance team [--date]      the team's records for one day
  attendance summary            monthly summary (backend or --local)
  performance team              team reviews between two dates
  export clients|attendance|performance --out file.xlsx

AUTH:
  Every command but login needs a token: --token or AGENCY_TOKEN.

EXAMPLES:
  export AGENCY_TOKEN=$(agencyctl login --email me@prime.rw --password s3cret)
  agencyctl clients expiring
  agencyctl attendance summary --year 2026 --month 3 --local
  agencyctl export performance --start 2026-07-01 --end 2026-09-30 --out q3.xlsx
*/
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.Error().Err(err).Msg("agencyctl failed")
		os.Exit(1)
	}
}
