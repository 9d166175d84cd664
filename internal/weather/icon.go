package weather

import "strconv"

// Icon is a displayable weather condition category.
type Icon string

const (
	IconSnow            Icon = "snow"
	IconThunder         Icon = "thunder"
	IconThunderDay      Icon = "thunder-day"
	IconThunderNight    Icon = "thunder-night"
	IconSleet           Icon = "sleet"
	IconHeavyRain       Icon = "heavy-rain"
	IconRainDay         Icon = "rain-day"
	IconRainNight       Icon = "rain-night"
	IconDrizzle         Icon = "drizzle"
	IconFog             Icon = "fog"
	IconHail            Icon = "hail"
	IconCloud           Icon = "cloud"
	IconPartlyCloudyDay Icon = "partly-cloudy-day"
	IconClearDay        Icon = "clear-day"
	IconClearNight      Icon = "clear-night"
)

// iconPair holds the day and night variant for a code. Night-invariant
// codes carry the same icon twice.
type iconPair struct {
	day   Icon
	night Icon
}

func same(i Icon) iconPair { return iconPair{day: i, night: i} }

var (
	thunder = iconPair{day: IconThunderDay, night: IconThunderNight}
	rain    = iconPair{day: IconRainDay, night: IconRainNight}
)

// iconTable mirrors the WWO condition code list.
var iconTable = map[int]iconPair{
	395: same(IconSnow),
	392: thunder,
	389: same(IconThunder),
	386: thunder,
	377: same(IconSleet),
	374: same(IconSleet),
	371: same(IconSnow),
	368: same(IconHeavyRain),
	365: rain,
	362: rain,
	359: same(IconHeavyRain),
	356: rain,
	353: rain,
	350: same(IconSleet),
	338: same(IconSnow),
	335: same(IconSnow),
	332: same(IconSnow),
	329: same(IconSnow),
	326: same(IconSnow),
	323: same(IconSnow),
	320: same(IconSnow),
	317: same(IconSleet),
	314: same(IconSleet),
	311: same(IconSleet),
	308: same(IconSleet),
	305: same(IconHeavyRain),
	302: same(IconHeavyRain),
	299: rain,
	296: same(IconDrizzle),
	293: same(IconDrizzle),
	284: same(IconSleet),
	281: same(IconSleet),
	266: same(IconDrizzle),
	263: rain,
	260: same(IconFog),
	248: same(IconFog),
	230: same(IconSnow),
	227: same(IconHail),
	200: thunder,
	185: same(IconSleet),
	182: same(IconSleet),
	179: rain,
	176: rain,
	143: same(IconFog),
	122: same(IconCloud),
	119: same(IconCloud),
	116: {day: IconPartlyCloudyDay, night: IconCloud},
	113: {day: IconClearDay, night: IconClearNight},
}

// IconFor maps a provider weather code to an icon. Unknown codes report false.
func IconFor(code int, isNight bool) (Icon, bool) {
	p, ok := iconTable[code]
	if !ok {
		return "", false
	}
	if isNight {
		return p.night, true
	}
	return p.day, true
}

// IconForCode is IconFor for the string codes the provider emits.
func IconForCode(code string, isNight bool) (Icon, bool) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return "", false
	}
	return IconFor(n, isNight)
}
