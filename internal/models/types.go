package models

// DefaultTaxCountry selects the tax regime used when none is configured
const DefaultTaxCountry = "NG"
