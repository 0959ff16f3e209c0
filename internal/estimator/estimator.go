package estimator

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	BaseDays       = 3
	DistancePerDay = 5.0

	earthRadiusKm = 6371.0

	// MaxDistanceKm is half the Earth's circumference, the longest great-circle distance.
	MaxDistanceKm = math.Pi * earthRadiusKm
)

var ErrUnknownArea = errors.New("unknown area code")

// Estimator returns a non-negative distance in kilometres between two area codes.
type Estimator interface {
	Distance(from, to string) (float64, error)
}

type Estimate struct {
	DistanceKm float64
	ETADays    int
}

// ETA converts a distance into delivery days.
func ETA(distanceKm float64) int {
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		distanceKm = 0
	}
	distanceKm = min(distanceKm, MaxDistanceKm)

	return BaseDays + int(math.Floor(distanceKm/DistancePerDay))
}

// Compute runs est and falls back to a zero distance when est is nil or fails.
// The returned error is the estimator failure, if any; the estimate is always usable.
func Compute(est Estimator, customerArea, manufacturerArea string) (Estimate, error) {
	if est == nil {
		return Estimate{ETADays: ETA(0)}, errors.New("estimator unavailable")
	}

	distance, err := safeDistance(est, manufacturerArea, customerArea)
	if err != nil {
		return Estimate{ETADays: ETA(0)}, err
	}

	return Estimate{DistanceKm: distance, ETADays: ETA(distance)}, nil
}

func safeDistance(est Estimator, from, to string) (distance float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			distance, err = 0, fmt.Errorf("estimator panicked: %v", rec)
		}
	}()

	distance, err = est.Distance(from, to)
	if err != nil {
		return 0, err
	}
	if distance < 0 || math.IsNaN(distance) || distance > MaxDistanceKm {
		return 0, fmt.Errorf("estimator returned invalid distance %v", distance)
	}

	return distance, nil
}

type coordinate struct {
	lat, lon float64
}

// Dublin estimates distances between Dublin postal districts using approximate
// district centroids and the great-circle distance between them.
type Dublin struct {
	districts map[string]coordinate
}

func NewDublin() *Dublin {
	return &Dublin{districts: dublinDistricts}
}

func (d *Dublin) Distance(from, to string) (float64, error) {
	a, ok := d.districts[normalize(from)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownArea, from)
	}

	b, ok := d.districts[normalize(to)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownArea, to)
	}

	return math.Round(haversine(a, b)*10) / 10, nil
}

func normalize(code string) string {
	code = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
	code = strings.TrimPrefix(code, "DUBLIN")

	if code != "" && code[0] != 'D' {
		code = "D" + code
	}
	if len(code) > 2 && code[1] == '0' {
		code = "D" + code[2:]
	}

	return code
}

func haversine(a, b coordinate) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.lat - a.lat)
	dLon := toRad(b.lon - a.lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.lat))*math.Cos(toRad(b.lat))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

var dublinDistricts = map[string]coordinate{
	"D1":  {53.3522, -6.2608},
	"D2":  {53.3398, -6.2546},
	"D3":  {53.3640, -6.2250},
	"D4":  {53.3280, -6.2270},
	"D5":  {53.3850, -6.2000},
	"D6":  {53.3200, -6.2650},
	"D6W": {53.3100, -6.2950},
	"D7":  {53.3560, -6.2850},
	"D8":  {53.3380, -6.2850},
	"D9":  {53.3800, -6.2500},
	"D10": {53.3400, -6.3450},
	"D11": {53.3900, -6.2950},
	"D12": {53.3200, -6.3200},
	"D13": {53.3950, -6.1500},
	"D14": {53.2950, -6.2550},
	"D15": {53.3850, -6.3800},
	"D16": {53.2800, -6.2750},
	"D17": {53.4000, -6.2050},
	"D18": {53.2600, -6.1900},
	"D20": {53.3500, -6.3900},
	"D22": {53.3250, -6.3950},
	"D24": {53.2850, -6.3700},
}
