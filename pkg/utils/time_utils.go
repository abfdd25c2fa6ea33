package utils

import "time"

// Sweden time location (CET/CEST)
var seLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Europe/Stockholm"); err == nil {
		return loc
	}
	return time.FixedZone("CET", 1*3600)
}()

func NowUTC() time.Time { return time.Now().UTC() }

func FormatDisplaySE(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(seLoc).Format("2006-01-02 15:04")
}
