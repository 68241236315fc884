package model

// Phone is a catalog entry for a single handset model.
// ID is assigned by the store; it is 0 until the record has been persisted.
type Phone struct {
	ID        int64  `json:"id"`
	PhoneName string `json:"phoneName"`
	BrandID   int32  `json:"brandId"`
}

// PhoneInput is the body accepted by create and full-replace requests.
// Any "id" in the body is ignored; the store or the request path decides it.
// BrandID is 32-bit to match the brand_id column; larger values fail decoding.
type PhoneInput struct {
	PhoneName string `json:"phoneName"`
	BrandID   int32  `json:"brandId"`
}

// PhonePatch is the body accepted by partial updates.
// Only fields present in the request body are applied.
type PhonePatch struct {
	PhoneName Optional[string] `json:"phoneName"`
	BrandID   Optional[int32]  `json:"brandId"`
}

// Apply returns a copy of p with every present field of the patch written over it.
func (pp PhonePatch) Apply(p Phone) Phone {
	if pp.PhoneName.Set {
		p.PhoneName = pp.PhoneName.Value
	}
	if pp.BrandID.Set {
		p.BrandID = pp.BrandID.Value
	}
	return p
}
