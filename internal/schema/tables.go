package schema

import "slices"

// Canonical trip columns.
const (
	ColID              = "ID"
	ColStartTime       = "Start Time"
	ColEndTime         = "End Time"
	ColBikeID          = "Bike ID"
	ColDuration        = "Duration"
	ColFromStationID   = "From Station ID"
	ColToStationID     = "To Station ID"
	ColUserType        = "User Type"
	ColGender          = "Gender"
	ColBirthYear       = "Birth Year"
	ColToStationName   = "To Station Name"
	ColFromStationName = "From Station Name"
	ColEndLatitude     = "End Latitude"
	ColEndLongitude    = "End Longitude"
	ColStartLatitude   = "Start Latitude"
	ColStartLongitude  = "Start Longitude"
	ColBikeType        = "Bike Type"
)

// User type codes.
const (
	UserMember    = "M"
	UserCasual    = "C"
	UserDependent = "D"
)

var columns = MustMapping(
	Synonyms{ColID, []string{"01 - Rental Details Rental ID", "ride_id", "trip_id"}},
	Synonyms{ColStartTime, []string{"01 - Rental Details Local Start Time", "started_at", "start_time", "starttime"}},
	Synonyms{ColEndTime, []string{"01 - Rental Details Local End Time", "ended_at", "end_time", "stoptime"}},
	Synonyms{ColBikeID, []string{"01 - Rental Details Bike ID", "bikeid"}},
	Synonyms{ColDuration, []string{"01 - Rental Details Duration In Seconds Uncapped", "tripduration"}},
	Synonyms{ColFromStationID, []string{"from_station_id", "start_station_id", "03 - Rental Start Station ID"}},
	Synonyms{ColToStationID, []string{"02 - Rental End Station ID", "end_station_id", "to_station_id"}},
	Synonyms{ColUserType, []string{"User Type", "member_casual", "usertype"}},
	Synonyms{ColGender, []string{"Member Gender", "gender"}},
	Synonyms{ColBirthYear, []string{"05 - Member Details Member Birthday Year", "birthyear", "birthday"}},
	Synonyms{ColToStationName, []string{"02 - Rental End Station Name", "end_station_name", "to_station_name"}},
	Synonyms{ColFromStationName, []string{"03 - Rental Start Station Name", "from_station_name", "start_station_name"}},
	Synonyms{ColEndLatitude, []string{"end_lat"}},
	Synonyms{ColEndLongitude, []string{"end_lng"}},
	Synonyms{ColStartLatitude, []string{"start_lat"}},
	Synonyms{ColStartLongitude, []string{"start_lng"}},
	Synonyms{ColBikeType, []string{"rideable_type"}},
)

var userTypes = MustMapping(
	Synonyms{UserMember, []string{"Subscriber", "member"}},
	Synonyms{UserCasual, []string{"Customer", "casual"}},
	Synonyms{UserDependent, []string{"Dependent"}},
)

var keepColumns = []string{
	ColID,
	ColStartTime,
	ColEndTime,
	ColBikeID,
	ColDuration,
	ColFromStationID,
	ColToStationID,
	ColUserType,
	ColGender,
	ColBirthYear,
	ColToStationName,
	ColFromStationName,
	ColEndLatitude,
	ColEndLongitude,
	ColBikeType,
	ColStartLatitude,
	ColStartLongitude,
}

// Columns is the built-in canonical column table.
func Columns() Mapping {
	return columns
}

// UserTypes maps single letter user type codes to the values providers use for them.
func UserTypes() Mapping {
	return userTypes
}

// UserTypeCode resolves a raw user type value such as "Subscriber" or "casual" to its code.
func UserTypeCode(value string) (string, bool) {
	return ReverseLookup(userTypes, value)
}

// KeepColumns is the output column order of a cleaned trip table.
func KeepColumns() []string {
	return slices.Clone(keepColumns)
}
