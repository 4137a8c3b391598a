// Package main provides an example of using sun calculations for sunrise/sunset times.
package main

import (
	"fmt"
	"time"

	"github.com/devskill-org/daylight/geo"
	"github.com/devskill-org/daylight/sun"
	"github.com/devskill-org/daylight/utils"
)

func main() {
	riga := geo.Location{Latitude: 56.9496, Longitude: 24.1052}
	zone, err := time.LoadLocation("Europe/Riga")
	if err != nil {
		zone = time.UTC
	}

	for _, name := range sun.EngineNames() {
		engine, _ := sun.EngineByName(name)
		c := sun.NewCalculator(riga, zone, engine)

		times, err := c.TimesForDate(time.Now())
		if err != nil {
			fmt.Printf("%-8s %v\n", name, err)
			continue
		}
		fmt.Printf("%-8s Sunrise: %s  Sunset: %s  Solar noon: %s  Day Length: %s\n",
			name,
			utils.FormatClock(times.Sunrise),
			utils.FormatClock(times.Sunset),
			utils.FormatClock(times.SolarNoon),
			utils.FormatDuration(times.Sunrise, times.Sunset))
	}
}
