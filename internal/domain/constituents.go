package domain

import (
	"math"
	"sort"
)

// Constituent names a tidal constituent by its angular speed.
type Constituent struct {
	Name          string
	SpeedDegPerHr float64
}

// constituentTable lists the named constituents by increasing speed.
// Speeds are in deg/hour (Schureman; NOAA TM NOS CO-OPS 0030).
var constituentTable = []Constituent{
	{"Sa", 0.0410686},
	{"Ssa", 0.0821373},
	{"Mm", 0.5443747},
	{"Mf", 1.0980331},
	{"Q1", 13.3986609},
	{"O1", 13.9430356},
	{"M1", 14.4920521},
	{"P1", 14.9589314},
	{"S1", 15.0000000},
	{"K1", 15.0410686},
	{"MNS2", 27.4238337},
	{"2N2", 27.8953548},
	{"MU2", 27.9682084},
	{"N2", 28.4397295},
	{"NU2", 28.5125831},
	{"M2", 28.9841042},
	{"LAM2", 29.4556253},
	{"L2", 29.5284789},
	{"T2", 29.9589333},
	{"S2", 30.0000000},
	{"K2", 30.0821373},
	{"MSN2", 30.5443747},
	{"2SM2", 31.0158958},
	{"2MK3", 42.9271398},
	{"M3", 43.4761563},
	{"MK3", 44.0251729},
	{"SK3", 45.0410686},
	{"MN4", 57.4238337},
	{"M4", 57.9682084},
	{"MS4", 58.9841042},
	{"S4", 60.0000000},
	{"2MN6", 86.4079379},
	{"M6", 86.9523127},
	{"2MS6", 87.9682084},
}

// speedMatchDegPerHr is how close a speed must be to a table entry to share its name.
const speedMatchDegPerHr = 1e-3

// Constituents returns a copy of the named constituents ordered by speed.
func Constituents() []Constituent {
	return append([]Constituent(nil), constituentTable...)
}

// ConstituentName finds the standard name for a speed given in rad/s.
func ConstituentName(speedRadPerSec float64) (string, bool) {
	deg := RadPerSecondToDegPerHour(speedRadPerSec)
	i := sort.Search(len(constituentTable), func(i int) bool {
		return constituentTable[i].SpeedDegPerHr >= deg-speedMatchDegPerHr
	})
	if i < len(constituentTable) && math.Abs(constituentTable[i].SpeedDegPerHr-deg) < speedMatchDegPerHr {
		return constituentTable[i].Name, true
	}
	return "", false
}

// DegPerHourToRadPerSecond converts an angular speed from deg/hour to rad/s.
func DegPerHourToRadPerSecond(deg float64) float64 {
	return Deg2Rad(deg) / 3600
}

// RadPerSecondToDegPerHour converts an angular speed from rad/s to deg/hour.
func RadPerSecondToDegPerHour(rad float64) float64 {
	return Rad2Deg(rad) * 3600
}

func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }

func Rad2Deg(rad float64) float64 { return rad * 180 / math.Pi }
