// pkg/registry/schema.go
package registry

type ActivityRegistry struct {
	Version    string     `json:"version"`
	Activities []Activity `json:"activities"`
}

// Activity describes one service task the workers implement.
type Activity struct {
	TaskType    string   `json:"taskType"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	ReadOnly    bool     `json:"readOnly"`
	GuestSafe   bool     `json:"guestSafe"`
	ErrorCodes  []string `json:"errorCodes"`
	Workflows   []string `json:"workflows"`
}
