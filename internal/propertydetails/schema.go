package propertydetails

import "encoding/json"

// Section fields are all optional strings; callers pre-format numbers and
// dates ("1,200 sq ft", "2021"). Extra keeps keys the schema does not know.

type Interior struct {
	Bedrooms      *string `json:"bedrooms,omitempty"`
	Bathrooms     *string `json:"bathrooms,omitempty"`
	FullBathrooms *string `json:"fullBathrooms,omitempty"`
	HalfBathrooms *string `json:"halfBathrooms,omitempty"`
	LivingArea    *string `json:"livingArea,omitempty"`
	Heating       *string `json:"heating,omitempty"`
	Cooling       *string `json:"cooling,omitempty"`
	Flooring      *string `json:"flooring,omitempty"`
	Appliances    *string `json:"appliances,omitempty"`
	Basement      *string `json:"basement,omitempty"`
	Fireplace     *string `json:"fireplace,omitempty"`
	Laundry       *string `json:"laundry,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ResidentialLot struct {
	Size       *string `json:"size,omitempty"`
	Dimensions *string `json:"dimensions,omitempty"`
	Zoning     *string `json:"zoning,omitempty"`
	Features   *string `json:"features,omitempty"`
	Parking    *string `json:"parking,omitempty"`
	Waterfront *string `json:"waterfront,omitempty"`
	View       *string `json:"view,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type CommercialLot struct {
	Size       *string `json:"size,omitempty"`
	Dimensions *string `json:"dimensions,omitempty"`
	Zoning     *string `json:"zoning,omitempty"`
	Features   *string `json:"features,omitempty"`
	Parking    *string `json:"parking,omitempty"`
	Frontage   *string `json:"frontage,omitempty"`
	Access     *string `json:"access,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ResidentialConstruction struct {
	YearBuilt          *string `json:"yearBuilt,omitempty"`
	PropertyType       *string `json:"propertyType,omitempty"`
	ArchitecturalStyle *string `json:"architecturalStyle,omitempty"`
	Stories            *string `json:"stories,omitempty"`
	Roof               *string `json:"roof,omitempty"`
	Foundation         *string `json:"foundation,omitempty"`
	Exterior           *string `json:"exterior,omitempty"`
	Condition          *string `json:"condition,omitempty"`
	NewConstruction    *string `json:"newConstruction,omitempty"`
	Builder            *string `json:"builder,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type CommercialConstruction struct {
	YearBuilt    *string `json:"yearBuilt,omitempty"`
	PropertyType *string `json:"propertyType,omitempty"`
	Stories      *string `json:"stories,omitempty"`
	Condition    *string `json:"condition,omitempty"`
	BuildingArea *string `json:"buildingArea,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ResidentialDetails struct {
	MLSNumber    *string `json:"mlsNumber,omitempty"`
	Status       *string `json:"status,omitempty"`
	ListingType  *string `json:"listingType,omitempty"`
	DaysOnMarket *string `json:"daysOnMarket,omitempty"`
	Possession   *string `json:"possession,omitempty"`
	Furnished    *string `json:"furnished,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type CommercialDetails struct {
	MLSNumber   *string `json:"mlsNumber,omitempty"`
	Status      *string `json:"status,omitempty"`
	ListingType *string `json:"listingType,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ResidentialLocation struct {
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	County         *string `json:"county,omitempty"`
	State          *string `json:"state,omitempty"`
	Zip            *string `json:"zip,omitempty"`
	Subdivision    *string `json:"subdivision,omitempty"`
	SchoolDistrict *string `json:"schoolDistrict,omitempty"`
	Directions     *string `json:"directions,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type CommercialLocation struct {
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	County       *string `json:"county,omitempty"`
	State        *string `json:"state,omitempty"`
	Zip          *string `json:"zip,omitempty"`
	Submarket    *string `json:"submarket,omitempty"`
	TrafficCount *string `json:"trafficCount,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ResidentialFinancial struct {
	ListPrice    *string `json:"listPrice,omitempty"`
	PricePerSqft *string `json:"pricePerSqft,omitempty"`
	Taxes        *string `json:"taxes,omitempty"`
	TaxYear      *string `json:"taxYear,omitempty"`
	HOAFee       *string `json:"hoaFee,omitempty"`
	HOAFrequency *string `json:"hoaFrequency,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type CommercialFinancial struct {
	ListPrice    *string `json:"listPrice,omitempty"`
	PricePerSqft *string `json:"pricePerSqft,omitempty"`
	Taxes        *string `json:"taxes,omitempty"`
	TaxYear      *string `json:"taxYear,omitempty"`
	CapRate      *string `json:"capRate,omitempty"`
	NOI          *string `json:"noi,omitempty"`
	LeaseRate    *string `json:"leaseRate,omitempty"`
	LeaseType    *string `json:"leaseType,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type Community struct {
	Name             *string `json:"name,omitempty"`
	Amenities        *string `json:"amenities,omitempty"`
	HOAName          *string `json:"hoaName,omitempty"`
	ElementarySchool *string `json:"elementarySchool,omitempty"`
	MiddleSchool     *string `json:"middleSchool,omitempty"`
	HighSchool       *string `json:"highSchool,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type Residential struct {
	Interior     *Interior                `json:"interior,omitempty"`
	Lot          *ResidentialLot          `json:"lot,omitempty"`
	Construction *ResidentialConstruction `json:"construction,omitempty"`
	Details      *ResidentialDetails      `json:"details,omitempty"`
	Location     *ResidentialLocation     `json:"location,omitempty"`
	Financial    *ResidentialFinancial    `json:"financial,omitempty"`
	Community    *Community               `json:"community,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type Commercial struct {
	Lot          *CommercialLot          `json:"lot,omitempty"`
	Construction *CommercialConstruction `json:"construction,omitempty"`
	Details      *CommercialDetails      `json:"details,omitempty"`
	Location     *CommercialLocation     `json:"location,omitempty"`
	Financial    *CommercialFinancial    `json:"financial,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}
