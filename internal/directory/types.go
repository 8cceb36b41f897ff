package directory

// Service identifies one controllable function within a zone, addressed by
// component/logical-component/type/variant. JSON field names match what the
// existing integrations consume.
type Service struct {
	Alias            string `json:"alias"`
	Type             string `json:"type"`
	Component        string `json:"component"`
	LogicalComponent string `json:"logicalComponent"`
	ServiceVariantID string `json:"serviceVariantID"`
	Service          string `json:"service"`
}

// VolumeControl describes how a zone's volume is controlled and where its
// live values appear in component state.
type VolumeControl struct {
	Component        string `json:"component"`
	ServiceType      string `json:"serviceType"`
	StateComponent   string `json:"stateComponent"`
	LogicalComponent string `json:"logicalComponent"`
	ServiceVariantID string `json:"serviceVariantID"`
	VolumeStateKey   string `json:"volumeStateKey"`
	MuteStateKey     string `json:"muteStateKey"`

	// VolumeScale is "percent" (0..100) or "dB" (-80..0).
	VolumeScale string `json:"volumeScale"`
}

// Zone is a named area with its controllable services.
type Zone struct {
	Name          string         `json:"name"`
	Services      []Service      `json:"services"`
	VolumeControl *VolumeControl `json:"volumeControl,omitempty"`
}

// LightEntity describes one controllable lighting load.
type LightEntity struct {
	Zone             string `json:"zone"`
	Name             string `json:"name"`
	Address          string `json:"address"`
	EntityType       string `json:"entityType"`
	IsDimmer         bool   `json:"isDimmer"`
	DimmerCommand    string `json:"dimmerCommand"`
	FadeTime         int    `json:"fadeTime"`
	DelayTime        int    `json:"delayTime"`
	Component        string `json:"component"`
	LogicalComponent string `json:"logicalComponent"`
	ServiceVariantID string `json:"serviceVariantID"`
	Service          string `json:"service"`
}
