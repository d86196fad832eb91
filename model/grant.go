package model

// TransmissionType labels what a grant carries. Only new transmissions
// exist here: retransmission handling is not modelled, so every HARQ
// process reuse is implicitly fresh data.
type TransmissionType string

const (
	TransmissionNew TransmissionType = "newTransmission"
)

// Grant is one scheduling decision for one UE in one direction for one
// slot. Grants are produced fresh on every scheduling pass and handed to
// the layer that turns them into physical-channel transmissions; the
// engine never retains them.
type Grant struct {
	RNTI      uint16           `json:"rnti"`
	Direction Direction        `json:"direction"`
	Type      TransmissionType `json:"type"`

	// HARQ bookkeeping stamped by the HARQ manager.
	HARQProcessID int  `json:"harq_process_id"`
	NDI           bool `json:"ndi"`

	// Frequency-domain allocation at RBG granularity. Length equals the
	// direction's RBG count; entries are 0 or 1.
	RBGAllocationBitmap []uint8 `json:"rbg_allocation_bitmap"`

	// Time-domain allocation. StartSymbol/NumSymbols are fixed to a
	// full-slot allocation by the round-robin strategy.
	StartSymbol int `json:"start_symbol"`
	NumSymbols  int `json:"num_symbols"`

	// SlotOffset is the number of slots between the scheduling decision
	// and the slot the grant applies to.
	SlotOffset int `json:"slot_offset"`

	MCSIndex          int    `json:"mcs_index"`
	RedundancyVersion int    `json:"redundancy_version"`
	DMRSLength        int    `json:"dmrs_length"`
	MappingType       string `json:"mapping_type"`
	NumLayers         int    `json:"num_layers"`
	NumCDMGroups      int    `json:"num_cdm_groups"`

	// Uplink-only antenna configuration.
	NumAntennaPorts int `json:"num_antenna_ports,omitempty"`
	TPMI            int `json:"tpmi,omitempty"`

	// Downlink-only fields. PrecodingMatrix defaults to a single-entry
	// identity; FeedbackSlotOffset is the ACK/NACK timing (K1) and is
	// never below 2.
	PrecodingMatrix    [][]float64 `json:"precoding_matrix,omitempty"`
	FeedbackSlotOffset int         `json:"feedback_slot_offset,omitempty"`
}
