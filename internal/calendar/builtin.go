package calendar

import models "io.winapps.starlight/internal/models/account"

// builtinEvents are the notable sky events of 2025. They carry no ID and
// cannot be edited.
var builtinEvents = []models.CalendarEvent{
	{Date: "2025-01-03", Type: models.EventTypeMeteor, Time: "Before dawn",
		Title:       "Quadrantids meteor shower peak",
		Description: "The first meteor shower of the year, up to 120 meteors per hour. Best after moonset in the early morning."},
	{Date: "2025-01-14", Type: models.EventTypePlanet,
		Title:       "Mars at opposition",
		Description: "Mars sits opposite the Sun and closest to Earth, bright and red all night long."},
	{Date: "2025-03-14", Type: models.EventTypeEclipse, Time: "15:55 ~ 17:00 KST",
		Title:       "Total lunar eclipse",
		Description: "The Moon passes fully into Earth's shadow and turns blood red."},
	{Date: "2025-03-20", Type: models.EventTypeOther,
		Title:       "March equinox",
		Description: "Day and night are equal in length. The spring observing season begins."},
	{Date: "2025-04-22", Type: models.EventTypeMeteor,
		Title:       "Lyrids meteor shower",
		Description: "About 20 meteors per hour, with many bright ones."},
	{Date: "2025-05-06", Type: models.EventTypeMeteor,
		Title:       "Eta Aquariids meteor shower",
		Description: "Debris left by Halley's Comet. Better from the southern hemisphere, visible before dawn in the north."},
	{Date: "2025-06-21", Type: models.EventTypeOther,
		Title:       "June solstice",
		Description: "The longest day in the northern hemisphere. Short nights, but the summer Milky Way starts to rise."},
	{Date: "2025-08-12", Type: models.EventTypeMeteor,
		Title:       "Perseids meteor shower",
		Description: "One of the three major showers of the year, up to 100 meteors per hour."},
	{Date: "2025-09-08", Type: models.EventTypeEclipse,
		Title:       "Total lunar eclipse",
		Description: "The second total lunar eclipse of the year."},
	{Date: "2025-09-21", Type: models.EventTypePlanet,
		Title:       "Saturn at opposition",
		Description: "Saturn is closest to Earth. Even a small telescope shows the rings clearly."},
	{Date: "2025-10-21", Type: models.EventTypeMeteor,
		Title:       "Orionids meteor shower",
		Description: "Meteors radiating from near Orion, around 20 per hour."},
	{Date: "2025-11-17", Type: models.EventTypeMeteor,
		Title:       "Leonids meteor shower",
		Description: "Famous for past meteor storms. An average year, but bright fireballs are possible."},
	{Date: "2025-12-14", Type: models.EventTypeMeteor,
		Title:       "Geminids meteor shower",
		Description: "The richest shower of the year, more than 120 meteors per hour under cold clear skies."},
}

// Builtin returns a copy of the built-in event table
func Builtin() []models.CalendarEvent {
	out := make([]models.CalendarEvent, len(builtinEvents))
	copy(out, builtinEvents)
	return out
}
