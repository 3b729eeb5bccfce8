package enums

import "fmt"

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "APARTMENT"
	PropertyTypeHouse      PropertyType = "HOUSE"
	PropertyTypeOffice     PropertyType = "OFFICE"
	PropertyTypeCommercial PropertyType = "COMMERCIAL"
	PropertyTypeLand       PropertyType = "LAND"
	PropertyTypeWarehouse  PropertyType = "WAREHOUSE"
	PropertyTypeRoom       PropertyType = "ROOM"
)

var validPropertyTypes = []PropertyType{
	PropertyTypeApartment,
	PropertyTypeHouse,
	PropertyTypeOffice,
	PropertyTypeCommercial,
	PropertyTypeLand,
	PropertyTypeWarehouse,
	PropertyTypeRoom,
}

func (p PropertyType) String() string {
	return string(p)
}

func (p PropertyType) IsValid() bool {
	for _, candidate := range validPropertyTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

func PropertyTypes() []PropertyType {
	return append([]PropertyType(nil), validPropertyTypes...)
}

func ParsePropertyType(value string) (PropertyType, error) {
	for _, candidate := range validPropertyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid property type %q", value)
}

// RentalModality is the commercial arrangement offered by a listing.
type RentalModality string

const (
	ModalitySale          RentalModality = "SALE"
	ModalityLongTermRent  RentalModality = "LONG_TERM_RENT"
	ModalityShortTermRent RentalModality = "SHORT_TERM_RENT"
)

var validModalities = []RentalModality{
	ModalitySale,
	ModalityLongTermRent,
	ModalityShortTermRent,
}

func (m RentalModality) String() string {
	return string(m)
}

func (m RentalModality) IsValid() bool {
	for _, candidate := range validModalities {
		if candidate == m {
			return true
		}
	}
	return false
}

func RentalModalities() []RentalModality {
	return append([]RentalModality(nil), validModalities...)
}

func ParseRentalModality(value string) (RentalModality, error) {
	for _, candidate := range validModalities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental modality %q", value)
}
