package enums

import "fmt"

// GarmentType maps to the garment_type_enum enum in Postgres.
type GarmentType string

const (
	GarmentTypeKaba       GarmentType = "kaba"
	GarmentTypeSlit       GarmentType = "slit"
	GarmentTypeShirt      GarmentType = "shirt"
	GarmentTypeTrousers   GarmentType = "trousers"
	GarmentTypeDress      GarmentType = "dress"
	GarmentTypeSmock      GarmentType = "smock"
	GarmentTypeKaftan     GarmentType = "kaftan"
	GarmentTypeSuit       GarmentType = "suit"
	GarmentTypeSchoolWear GarmentType = "school_wear"
	GarmentTypeOther      GarmentType = "other"
)

var validGarmentTypes = []GarmentType{
	GarmentTypeKaba,
	GarmentTypeSlit,
	GarmentTypeShirt,
	GarmentTypeTrousers,
	GarmentTypeDress,
	GarmentTypeSmock,
	GarmentTypeKaftan,
	GarmentTypeSuit,
	GarmentTypeSchoolWear,
	GarmentTypeOther,
}

// IsValid reports whether the value matches the canonical garment type enum.
func (g GarmentType) IsValid() bool {
	for _, candidate := range validGarmentTypes {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGarmentType converts raw input into GarmentType.
func ParseGarmentType(value string) (GarmentType, error) {
	for _, candidate := range validGarmentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid garment type %q", value)
}
