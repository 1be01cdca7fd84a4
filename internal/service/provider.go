// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"github.com/Xuanwo/go-locale"
	"golang.org/x/text/language"

	"github.com/wneessen/osm2csv/internal/config"
	"github.com/wneessen/osm2csv/internal/geocode"
	nominatim "github.com/wneessen/osm2csv/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/osm2csv/internal/http"
)

func newGeocodeProvider(conf *config.Config, client *http.Client) geocode.Geocoder {
	return nominatim.New(client, languageTag(conf.Locale),
		nominatim.WithEndpoint(conf.Geocoder.Endpoint),
		nominatim.WithEmail(conf.Geocoder.Email),
		nominatim.WithTimeout(conf.Geocoder.Timeout),
		nominatim.WithRateLimit(conf.RequestRate()),
	)
}

// languageTag resolves the language used for geocoded names. Unknown or empty
// locales fall back to the system locale, then to English.
func languageTag(loc string) language.Tag {
	if loc != "" {
		if tag, err := language.Parse(loc); err == nil {
			return tag
		}
	}
	tag, err := locale.Detect()
	if err != nil || tag == language.Und {
		return language.English
	}
	return tag
}
