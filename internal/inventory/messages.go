package inventory

// Wire messages of inventory.InventoryService, encoded with the json codec.

const (
	CodeOK              = "OK"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeError           = "ERROR"
)

type ProductInfo struct {
	InventoryStatus string `json:"inventoryStatus,omitempty"`
	Name            string `json:"name,omitempty"`
	Price           string `json:"price,omitempty"`
}

type CheckRequest struct {
	ProductID   string            `json:"productId"`
	Quantity    int32             `json:"quantity"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ProductInfo *ProductInfo      `json:"productInfo,omitempty"`
}

type ResultStatus struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type CheckResponse struct {
	ProductID         string        `json:"productId"`
	Available         bool          `json:"available"`
	AvailableQuantity int32         `json:"availableQuantity"`
	Status            string        `json:"status"`
	ResultStatus      *ResultStatus `json:"resultStatus,omitempty"`
	LatencyMs         float64       `json:"latencyMs"`
}

type BatchItem struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type CheckBatchRequest struct {
	Items    []BatchItem       `json:"items"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ItemStatus struct {
	ProductID         string `json:"productId"`
	Available         bool   `json:"available"`
	AvailableQuantity int32  `json:"availableQuantity"`
	ReservedQuantity  int32  `json:"reservedQuantity"`
	Status            string `json:"status"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
}

type CheckBatchResponse struct {
	Items        []ItemStatus  `json:"items"`
	ResultStatus *ResultStatus `json:"resultStatus,omitempty"`
	LatencyMs    float64       `json:"latencyMs"`
}

func codeOf(rs *ResultStatus) string {
	if rs == nil || rs.Code == "" {
		return CodeError
	}
	return rs.Code
}
