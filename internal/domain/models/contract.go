package models

// ContractInfoData is the persisted form of a ContractInfo.
type ContractInfoData struct {
	Identifier      string `json:"identifier"`
	CodeID          string `json:"codeId"`
	ContractAddress string `json:"contractAddress"`
}

// ContractInfo records one instantiated contract under its unique identifier.
type ContractInfo struct {
	identifier string
	codeID     string
	address    string
}

func NewContractInfo(identifier, codeID, address string) *ContractInfo {
	return &ContractInfo{identifier: identifier, codeID: codeID, address: address}
}

// ContractInfoFromData rebuilds a ContractInfo from its persisted form.
func ContractInfoFromData(d ContractInfoData) *ContractInfo {
	return NewContractInfo(d.Identifier, d.CodeID, d.ContractAddress)
}

func (c *ContractInfo) Identifier() string { return c.identifier }
func (c *ContractInfo) CodeID() string     { return c.codeID }
func (c *ContractInfo) Address() string    { return c.address }

// Data returns the persisted form.
func (c *ContractInfo) Data() ContractInfoData {
	return ContractInfoData{
		Identifier:      c.identifier,
		CodeID:          c.codeID,
		ContractAddress: c.address,
	}
}

// Equal reports whether both entries carry the same identifier, code id and address.
func (c *ContractInfo) Equal(other *ContractInfo) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.identifier == other.identifier && c.codeID == other.codeID && c.address == other.address
}
