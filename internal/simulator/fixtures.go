package simulator

import (
	"time"

	"jaldrishti/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultLocations is the fixed monitoring network.
func DefaultLocations() []models.Location {
	return []models.Location{
		{
			ID:               "LOC001",
			Name:             "Yamuna River - Delhi",
			Coordinates:      models.Coordinates{Latitude: 28.6139, Longitude: 77.2090},
			RiverName:        "Yamuna",
			State:            "Delhi",
			District:         "Central Delhi",
			Sensors:          []string{"SENS001", "SENS002"},
			Status:           models.LocationActive,
			LastMaintenance:  date("2024-01-15"),
			InstallationDate: date("2023-06-01"),
		},
		{
			ID:               "LOC002",
			Name:             "Ganga River - Varanasi",
			Coordinates:      models.Coordinates{Latitude: 25.3176, Longitude: 82.9739},
			RiverName:        "Ganga",
			State:            "Uttar Pradesh",
			District:         "Varanasi",
			Sensors:          []string{"SENS003", "SENS004"},
			Status:           models.LocationActive,
			LastMaintenance:  date("2024-01-20"),
			InstallationDate: date("2023-07-15"),
		},
		{
			ID:               "LOC003",
			Name:             "Narmada River - Bhopal",
			Coordinates:      models.Coordinates{Latitude: 23.2599, Longitude: 77.4126},
			RiverName:        "Narmada",
			State:            "Madhya Pradesh",
			District:         "Bhopal",
			Sensors:          []string{"SENS005"},
			Status:           models.LocationMaintenance,
			LastMaintenance:  date("2024-01-10"),
			InstallationDate: date("2023-08-01"),
		},
	}
}

// DefaultTeams is the field roster. now stamps LastUpdate.
func DefaultTeams(now time.Time) []models.Team {
	return []models.Team{
		{
			ID:              "TEAM001",
			Name:            "Team Alpha",
			Leader:          "Dr. Rajesh Kumar",
			Members:         []string{"Dr. Rajesh Kumar", "Eng. Priya Sharma", "Tech. Amit Singh"},
			CurrentLocation: "Yamuna River - Delhi",
			Status:          models.TeamActive,
			AssignedSites:   []string{"LOC001"},
			LastUpdate:      now,
		},
		{
			ID:              "TEAM002",
			Name:            "Team Beta",
			Leader:          "Dr. Sunita Gupta",
			Members:         []string{"Dr. Sunita Gupta", "Eng. Vikram Mehta", "Tech. Ravi Kumar"},
			CurrentLocation: "Ganga River - Varanasi",
			Status:          models.TeamActive,
			AssignedSites:   []string{"LOC002"},
			LastUpdate:      now,
		},
		{
			ID:              "TEAM003",
			Name:            "Team Gamma",
			Leader:          "Dr. Anil Verma",
			Members:         []string{"Dr. Anil Verma", "Eng. Kavita Joshi"},
			CurrentLocation: "Narmada River - Bhopal",
			Status:          models.TeamEnRoute,
			AssignedSites:   []string{"LOC003"},
			LastUpdate:      now,
		},
	}
}

// DefaultSamples is the sample log at startup.
func DefaultSamples(now time.Time) []models.Sample {
	return []models.Sample{
		{
			ID:             "SAMPLE001",
			LocationID:     "LOC001",
			CollectedBy:    "Team Alpha",
			CollectionDate: now,
			SampleType:     models.SampleSurface,
			Status:         models.SampleAnalyzed,
			Results: &models.Measurements{
				Lead:            0.008,
				Mercury:         0.0018,
				Arsenic:         0.012,
				Cadmium:         0.004,
				Chromium:        0.045,
				Nickel:          0.015,
				PH:              7.2,
				Temperature:     25.5,
				DissolvedOxygen: 8.5,
			},
			Notes:  "Sample collected from main flow area",
			Photos: []string{"photo1.jpg", "photo2.jpg"},
		},
	}
}
