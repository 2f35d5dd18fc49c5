package models

// Distributor is one entry of the fixed distributor enumeration
type Distributor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

const (
	DistributorIngram   = "ingram"
	DistributorTDSynnex = "td_synnex"
	DistributorDH       = "dh"
)

// Distributors lists the known distributors, in display order
var Distributors = []Distributor{
	{ID: DistributorIngram, Name: "Ingram Micro", Enabled: true},
	{ID: DistributorTDSynnex, Name: "TD SYNNEX", Enabled: false},
	{ID: DistributorDH, Name: "D&H", Enabled: false},
}

// LookupDistributor finds a distributor by id
func LookupDistributor(id string) (Distributor, bool) {
	for _, d := range Distributors {
		if d.ID == id {
			return d, true
		}
	}
	return Distributor{}, false
}
