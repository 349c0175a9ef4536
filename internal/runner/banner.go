package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lanscan/pkg/version"
)

const banner = `
   __                                 
  / /___ _____  ______________ _____ 
 / / __ ` + "`" + `/ __ \/ ___/ ___/ __ ` + "`" + `/ __ \
/ / /_/ / / / (__  ) /__/ /_/ / / / /
/_/\__,_/_/ /_/____/\___/\__,_/_/ /_/ 
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tlanscan %s\n\n", version.GetVersion())
}
