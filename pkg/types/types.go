package types

import (
	"encoding/json"
	"time"
)

// User is a platform login. Admin users hold the admin role on every
// project implicitly.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Visibility controls whether non-members can see a project in listings.
type Visibility string

const (
	VisibilityPrivate Visibility = "Private"
	VisibilityShared  Visibility = "Shared"
)

// Project owns every other entity: folders, documents, device records,
// analysis artifacts, topology state.
type Project struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Visibility     Visibility `json:"visibility"`
	TopoURL        string     `json:"topo_url,omitempty"`
	BackupInterval string     `json:"backup_interval,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Role defines what a member may do within a project.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEngineer Role = "engineer"
	RoleViewer   Role = "viewer"
)

// Member is a (project, username, role) triple. One role per user per project.
type Member struct {
	ProjectID string    `json:"project_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	AddedAt   time.Time `json:"added_at"`
}

// Reserved folder ids, synthesized per project when missing.
const (
	FolderConfig = "Config"
	FolderOther  = "Other"
)

// IsReservedFolder reports whether the folder id is one of the synthesized ids.
func IsReservedFolder(id string) bool {
	return id == FolderConfig || id == FolderOther
}

// Folder is a node in a project's folder tree. ParentID nil means root.
// Deleted folders stay in the store so their documents surface under Other.
type Folder struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"`
	Deleted   bool      `json:"deleted,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VersionMetadata is the 5W+description form attached to each uploaded
// version. Every field is free text.
type VersionMetadata struct {
	Who         string `json:"who,omitempty"`
	What        string `json:"what,omitempty"`
	Where       string `json:"where,omitempty"`
	When        string `json:"when,omitempty"`
	Why         string `json:"why,omitempty"`
	Description string `json:"description,omitempty"`
}

// Document is a family of versions identified by (project, filename,
// folder_id). DeviceName is set only for Config documents.
type Document struct {
	ID            string    `json:"document_id"`
	ProjectID     string    `json:"project_id"`
	Filename      string    `json:"filename"`
	FolderID      string    `json:"folder_id"`
	LatestVersion int       `json:"latest_version_number"`
	ContentType   string    `json:"content_type,omitempty"`
	DeviceName    string    `json:"device_name,omitempty"`
	CreatedBy     string    `json:"creator"`
	CreatedAt     time.Time `json:"created_at"`
	Deleted       bool      `json:"deleted,omitempty"`
}

// DocumentVersion is one entry in a document family's chain. Exactly one
// version per family has IsLatest set.
type DocumentVersion struct {
	DocumentID    string          `json:"document_id"`
	VersionNumber int             `json:"version_number"`
	BlobHash      string          `json:"blob_hash"`
	Size          int64           `json:"size"`
	UploadedBy    string          `json:"uploader"`
	CreatedAt     time.Time       `json:"created_at"`
	Metadata      VersionMetadata `json:"metadata"`
	IsLatest      bool            `json:"is_latest"`
}

// Vendor identifies which parser variant produced a DeviceRecord.
type Vendor string

const (
	VendorCisco   Vendor = "cisco"
	VendorHuawei  Vendor = "huawei"
	VendorUnknown Vendor = "unknown"
)

// DeviceRole is the name-classifier output, overridable in topology state.
type DeviceRole string

const (
	RoleCore         DeviceRole = "core"
	RoleDistribution DeviceRole = "distribution"
	RoleAccess       DeviceRole = "access"
	RoleRouter       DeviceRole = "router"
	RoleUnknownDev   DeviceRole = "unknown"
)

// DeviceOverview holds identity and health facts extracted from a config.
// Missing numerics stay nil; missing strings stay empty and render as a
// placeholder at the edge.
type DeviceOverview struct {
	Hostname       string     `json:"hostname,omitempty"`
	Model          string     `json:"model,omitempty"`
	OSVersion      string     `json:"os_version,omitempty"`
	SerialNumber   string     `json:"serial_number,omitempty"`
	MgmtIP         string     `json:"mgmt_ip,omitempty"`
	Role           DeviceRole `json:"role,omitempty"`
	Uptime         string     `json:"uptime,omitempty"`
	CPUUtilization *float64   `json:"cpu_utilization"`
	MemoryUsage    *float64   `json:"memory_usage"`
}

// InterfaceErrors carries input/output error counters when present.
type InterfaceErrors struct {
	Input  *int64 `json:"input"`
	Output *int64 `json:"output"`
}

// PortMode is the switchport mode of an interface.
type PortMode string

const (
	PortModeAccess  PortMode = "access"
	PortModeTrunk   PortMode = "trunk"
	PortModeUnknown PortMode = "unknown"
)

// Interface is one port of a parsed device. AllowedVLANs keeps the original
// textual form ("10-20,30" or "all"); consumers expand it on read.
type Interface struct {
	Name         string          `json:"name"`
	Type         string          `json:"type,omitempty"`
	AdminStatus  string          `json:"admin_status,omitempty"`
	OperStatus   string          `json:"oper_status,omitempty"`
	IPv4Address  string          `json:"ipv4_address,omitempty"`
	PortMode     PortMode        `json:"port_mode"`
	AccessVLAN   *int            `json:"access_vlan"`
	NativeVLAN   *int            `json:"native_vlan"`
	AllowedVLANs string          `json:"allowed_vlans,omitempty"`
	Speed        string          `json:"speed,omitempty"`
	Duplex       string          `json:"duplex,omitempty"`
	PoEPower     *float64        `json:"poe_power"`
	Description  string          `json:"description,omitempty"`
	STPRole      string          `json:"stp_role,omitempty"`
	STPState     string          `json:"stp_state,omitempty"`
	STPEdgedPort *bool           `json:"stp_edged_port,omitempty"`
	Errors       InterfaceErrors `json:"errors"`
}

// VLANInfo aggregates VLAN facts. Map keys are decimal VLAN ids.
type VLANInfo struct {
	VLANList   []int             `json:"vlan_list"`
	VLANNames  map[string]string `json:"vlan_names,omitempty"`
	VLANStatus map[string]string `json:"vlan_status,omitempty"`
}

// STPInfo holds spanning-tree facts. Per-port roles/states mirror the
// structured interface entries for consumers that want a flat map.
type STPInfo struct {
	Mode             string            `json:"mode,omitempty"`
	BridgeID         string            `json:"bridge_id,omitempty"`
	RootBridgeID     string            `json:"root_bridge_id,omitempty"`
	BridgePriority   *int              `json:"bridge_priority"`
	RootBridgeStatus bool              `json:"root_bridge_status"`
	PortfastEnabled  bool              `json:"portfast_enabled"`
	BPDUGuard        bool              `json:"bpdu_guard"`
	PortRoles        map[string]string `json:"port_roles,omitempty"`
	PortStates       map[string]string `json:"port_states,omitempty"`
}

// StaticRoute is one static routing entry.
type StaticRoute struct {
	Prefix  string `json:"prefix"`
	NextHop string `json:"next_hop,omitempty"`
}

// OSPFNeighbor is one adjacency from the OSPF neighbor table.
type OSPFNeighbor struct {
	NeighborID string `json:"neighbor_id"`
	Address    string `json:"address,omitempty"`
	State      string `json:"state,omitempty"`
	Interface  string `json:"interface,omitempty"`
}

// OSPFInfo holds OSPF process facts.
type OSPFInfo struct {
	RouterID   string         `json:"router_id,omitempty"`
	ProcessID  string         `json:"process_id,omitempty"`
	Areas      []string       `json:"areas,omitempty"`
	Interfaces []string       `json:"interfaces,omitempty"`
	Neighbors  []OSPFNeighbor `json:"neighbors,omitempty"`
}

// BGPPeer is one configured BGP neighbor.
type BGPPeer struct {
	Address            string `json:"address"`
	RemoteAS           *int   `json:"remote_as"`
	State              string `json:"state,omitempty"`
	PrefixesReceived   *int   `json:"prefixes_received"`
	PrefixesAdvertised *int   `json:"prefixes_advertised"`
}

// BGPInfo holds BGP process facts.
type BGPInfo struct {
	ASNumber *int      `json:"as_number"`
	RouterID string    `json:"router_id,omitempty"`
	Peers    []BGPPeer `json:"peers,omitempty"`
}

// EIGRPInfo holds EIGRP process facts.
type EIGRPInfo struct {
	ASNumber *int     `json:"as_number"`
	Networks []string `json:"networks,omitempty"`
}

// RIPInfo holds RIP facts.
type RIPInfo struct {
	Version  *int     `json:"version"`
	Networks []string `json:"networks,omitempty"`
}

// RoutingInfo aggregates all routing protocols found on the device.
type RoutingInfo struct {
	Static []StaticRoute `json:"static"`
	OSPF   *OSPFInfo     `json:"ospf,omitempty"`
	EIGRP  *EIGRPInfo    `json:"eigrp,omitempty"`
	BGP    *BGPInfo      `json:"bgp,omitempty"`
	RIP    *RIPInfo      `json:"rip,omitempty"`
}

// NeighborProtocol is the discovery protocol that produced a neighbor entry.
type NeighborProtocol string

const (
	ProtocolCDP  NeighborProtocol = "CDP"
	ProtocolLLDP NeighborProtocol = "LLDP"
)

// Neighbor is one CDP/LLDP adjacency.
type Neighbor struct {
	DeviceName   string           `json:"device_name"`
	IPAddress    string           `json:"ip_address,omitempty"`
	Platform     string           `json:"platform,omitempty"`
	LocalPort    string           `json:"local_port,omitempty"`
	RemotePort   string           `json:"remote_port,omitempty"`
	Capabilities []string         `json:"capabilities,omitempty"`
	Protocol     NeighborProtocol `json:"protocol"`
}

// MACEntry is one MAC address table row.
type MACEntry struct {
	MAC  string `json:"mac"`
	VLAN *int   `json:"vlan"`
	Port string `json:"port,omitempty"`
	Type string `json:"type,omitempty"`
}

// ARPEntry is one ARP table row.
type ARPEntry struct {
	IPAddress string `json:"ip_address"`
	MAC       string `json:"mac,omitempty"`
	Interface string `json:"interface,omitempty"`
	Age       string `json:"age,omitempty"`
}

// MACARPInfo aggregates MAC and ARP tables.
type MACARPInfo struct {
	MACTable []MACEntry `json:"mac_table"`
	ARPTable []ARPEntry `json:"arp_table"`
}

// UserAccount is one local account on the device.
type UserAccount struct {
	Username  string `json:"username"`
	Privilege *int   `json:"privilege"`
}

// AAAInfo reports which AAA functions are configured.
type AAAInfo struct {
	Authentication bool `json:"authentication"`
	Authorization  bool `json:"authorization"`
	Accounting     bool `json:"accounting"`
}

// SSHInfo reports SSH server state.
type SSHInfo struct {
	Enabled bool   `json:"enabled"`
	Version string `json:"version,omitempty"`
}

// SNMPInfo reports SNMP configuration.
type SNMPInfo struct {
	Enabled     bool     `json:"enabled"`
	Version     string   `json:"version,omitempty"`
	Communities []string `json:"communities,omitempty"`
}

// NTPInfo reports NTP configuration and sync state.
type NTPInfo struct {
	Enabled      bool     `json:"enabled"`
	Synchronized bool     `json:"synchronized"`
	Stratum      *int     `json:"stratum"`
	Servers      []string `json:"servers,omitempty"`
}

// SyslogInfo reports remote logging configuration.
type SyslogInfo struct {
	Enabled bool     `json:"enabled"`
	Hosts   []string `json:"hosts,omitempty"`
}

// ACL is one access list with its raw rule lines.
type ACL struct {
	Name  string   `json:"name"`
	Type  string   `json:"type,omitempty"`
	Rules []string `json:"rules,omitempty"`
}

// SecurityInfo aggregates device security posture.
type SecurityInfo struct {
	UserAccounts []UserAccount `json:"user_accounts"`
	AAA          AAAInfo       `json:"aaa"`
	SSH          SSHInfo       `json:"ssh"`
	SNMP         SNMPInfo      `json:"snmp"`
	NTP          NTPInfo       `json:"ntp"`
	Syslog       SyslogInfo    `json:"logging"`
	ACLs         []ACL         `json:"acls"`
}

// PortChannel is one aggregated link group.
type PortChannel struct {
	ID      string   `json:"id"`
	Mode    string   `json:"mode,omitempty"`
	Members []string `json:"members,omitempty"`
}

// FHRPGroup is one HSRP or VRRP group.
type FHRPGroup struct {
	Group     string `json:"group"`
	VirtualIP string `json:"virtual_ip,omitempty"`
	Priority  *int   `json:"priority"`
	Interface string `json:"interface,omitempty"`
}

// FHRPGroups wraps a group list for the hsrp/vrrp JSON shape.
type FHRPGroups struct {
	Groups []FHRPGroup `json:"groups"`
}

// HAInfo aggregates high-availability configuration.
type HAInfo struct {
	EtherChannel []PortChannel `json:"etherchannel"`
	HSRP         FHRPGroups    `json:"hsrp"`
	VRRP         FHRPGroups    `json:"vrrp"`
}

// DeviceRecord is the normalized, vendor-agnostic parse of one device's
// configuration. Keyed by (project, device_name); overwritten whole on each
// new Config ingest. OriginalContent is preserved byte-for-byte.
type DeviceRecord struct {
	ProjectID       string         `json:"project_id"`
	DeviceName      string         `json:"device_name"`
	Vendor          Vendor         `json:"vendor"`
	ParsedAt        time.Time      `json:"parsed_at"`
	SourceVersion   int            `json:"source_version"`
	DeviceOverview  DeviceOverview `json:"device_overview"`
	Interfaces      []Interface    `json:"interfaces"`
	VLANs           VLANInfo       `json:"vlans"`
	STP             STPInfo        `json:"stp"`
	Routing         RoutingInfo    `json:"routing"`
	Neighbors       []Neighbor     `json:"neighbors"`
	MACARP          MACARPInfo     `json:"mac_arp"`
	Security        SecurityInfo   `json:"security"`
	HA              HAInfo         `json:"ha"`
	OriginalContent string         `json:"original_content"`
}

// AnalysisKind identifies one LLM analysis flavor.
type AnalysisKind string

const (
	KindProjectOverview        AnalysisKind = "project_overview"
	KindProjectRecommendations AnalysisKind = "project_recommendations"
	KindProjectTopology        AnalysisKind = "project_topology"
	KindDeviceOverview         AnalysisKind = "device_overview"
	KindDeviceRecommendations  AnalysisKind = "device_recommendations"
	KindDeviceConfigDrift      AnalysisKind = "device_config_drift"
)

// AnalysisKinds lists every kind the controller accepts.
var AnalysisKinds = []AnalysisKind{
	KindProjectOverview,
	KindProjectRecommendations,
	KindProjectTopology,
	KindDeviceOverview,
	KindDeviceRecommendations,
	KindDeviceConfigDrift,
}

// IsDeviceKind reports whether the kind is scoped to a single device.
func (k AnalysisKind) IsDeviceKind() bool {
	switch k {
	case KindDeviceOverview, KindDeviceRecommendations, KindDeviceConfigDrift:
		return true
	}
	return false
}

// Valid reports whether k is one of the known kinds.
func (k AnalysisKind) Valid() bool {
	for _, known := range AnalysisKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ArtifactStatus is the human-review state of an analysis artifact.
type ArtifactStatus string

const (
	StatusPendingReview ArtifactStatus = "pending_review"
	StatusVerified      ArtifactStatus = "verified"
	StatusRejected      ArtifactStatus = "rejected"
)

// TokenUsage is the token accounting returned by the LLM adapter.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// LLMMetrics describes one adapter invocation.
type LLMMetrics struct {
	ModelName       string     `json:"model_name"`
	InferenceTimeMS int64      `json:"inference_time_ms"`
	TokenUsage      TokenUsage `json:"token_usage"`
}

// KeyChange is one field-level difference between the AI draft and the
// reviewer's verified JSON.
type KeyChange struct {
	Path       string `json:"path"`
	ChangeType string `json:"change_type"` // modified, added, removed
	Before     string `json:"before,omitempty"`
	After      string `json:"after,omitempty"`
}

// AccuracyMetrics summarizes the verification diff.
type AccuracyMetrics struct {
	TotalChanges  int                    `json:"total_changes"`
	ChangesByType map[string][]KeyChange `json:"changes_by_type"`
	KeyChanges    []KeyChange            `json:"key_changes"`
	AccuracyScore float64                `json:"accuracy_score"`
}

// AnalysisArtifact is the latest AI output for a (project, kind[, device])
// plus its review state. History is not retained.
type AnalysisArtifact struct {
	ProjectID       string           `json:"project_id"`
	Kind            AnalysisKind     `json:"kind"`
	DeviceName      string           `json:"device_name,omitempty"`
	AIDraftJSON     json.RawMessage  `json:"ai_draft_json,omitempty"`
	AIDraftText     string           `json:"ai_draft_text,omitempty"`
	Status          ArtifactStatus   `json:"status"`
	VerifiedJSON    json.RawMessage  `json:"verified_json,omitempty"`
	Reviewer        string           `json:"reviewer,omitempty"`
	Comments        string           `json:"comments,omitempty"`
	LLMMetrics      *LLMMetrics      `json:"llm_metrics,omitempty"`
	AccuracyMetrics *AccuracyMetrics `json:"accuracy_metrics,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Position is a node coordinate on the unitless 0-100 plane. Values outside
// the range are legal (pan/zoom).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TopologyLink is one edge between two device ids.
type TopologyLink struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Label    string `json:"label,omitempty"`
	Evidence string `json:"evidence,omitempty"`
	Type     string `json:"type,omitempty"`
}

// TopologyState is the persisted, user-editable layout. Saved wholesale,
// last writer wins.
type TopologyState struct {
	ProjectID  string                `json:"project_id"`
	Positions  map[string]Position   `json:"positions"`
	Links      []TopologyLink        `json:"links"`
	NodeLabels map[string]string     `json:"node_labels"`
	NodeRoles  map[string]DeviceRole `json:"node_roles"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// TopologyNode is one merged node returned by the topology view.
type TopologyNode struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Role   DeviceRole `json:"role"`
	Parsed bool       `json:"parsed"`
}

// InFlightMarker records an outstanding LLM job. At most one per project
// regardless of kind; durable across restarts.
type InFlightMarker struct {
	ProjectID string       `json:"project_id"`
	Kind      AnalysisKind `json:"kind"`
	StartedAt time.Time    `json:"started_at"`
}

// OptionCategory is an upload-form dropdown bucket.
type OptionCategory string

const (
	OptionWhat  OptionCategory = "what"
	OptionWhere OptionCategory = "where"
	OptionWhen  OptionCategory = "when"
	OptionWhy   OptionCategory = "why"
)

// Valid reports whether c is a known category.
func (c OptionCategory) Valid() bool {
	switch c {
	case OptionWhat, OptionWhere, OptionWhen, OptionWhy:
		return true
	}
	return false
}

// ProjectOption is one remembered dropdown value, unique per
// (project, category, value).
type ProjectOption struct {
	ProjectID string         `json:"project_id"`
	Category  OptionCategory `json:"category"`
	Value     string         `json:"value"`
}

// DeviceImage is the topology icon for one device, stored base64-encoded.
type DeviceImage struct {
	ProjectID   string    `json:"project_id"`
	DeviceName  string    `json:"device_name"`
	ContentType string    `json:"content_type"`
	Data        string    `json:"data"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IfaceCounts is the T/U/D/A interface rollup on a summary row.
type IfaceCounts struct {
	Total     int `json:"total"`
	Up        int `json:"up"`
	Down      int `json:"down"`
	AdminDown int `json:"adminDown"`
}

// SummaryRow is the projected per-device record surfaced on the summary
// table and CSV export.
type SummaryRow struct {
	Device        string      `json:"device"`
	Model         string      `json:"model,omitempty"`
	Serial        string      `json:"serial,omitempty"`
	OSVer         string      `json:"os_ver,omitempty"`
	MgmtIP        string      `json:"mgmt_ip,omitempty"`
	Ifaces        IfaceCounts `json:"ifaces"`
	AccessPorts   int         `json:"access_ports"`
	TrunkPorts    int         `json:"trunk_ports"`
	UnusedPorts   int         `json:"unused_ports"`
	VLANCount     int         `json:"vlan_count"`
	NativeVLAN    *int        `json:"native_vlan"`
	TrunkAllowed  string      `json:"trunk_allowed,omitempty"`
	STP           string      `json:"stp,omitempty"`
	STPRole       string      `json:"stp_role,omitempty"`
	OSPFNeighbors int         `json:"ospf_neigh"`
	BGPASN        *int        `json:"bgp_asn_neigh"`
	RTProto       string      `json:"rt_proto,omitempty"`
	CPU           *float64    `json:"cpu"`
	Mem           *float64    `json:"mem"`
	Status        string      `json:"status"`
}

// Summary row status values. Anything other than OK is a warning surfaced
// on the table; Drift stays until a newer upload overwrites the record.
const (
	SummaryStatusOK          = "OK"
	SummaryStatusDrift       = "Drift"
	SummaryStatusParseFailed = "Parse failed"
	SummaryStatusEmpty       = "Empty config"
)

// SummaryMetrics is the dashboard rollup across a project's devices.
type SummaryMetrics struct {
	TotalDevices int                `json:"total_devices"`
	ByRole       map[DeviceRole]int `json:"by_role"`
	TotalPorts   int                `json:"total_ports"`
	PortsUp      int                `json:"ports_up"`
	TotalVLANs   int                `json:"total_vlans"`
	DriftDevices int                `json:"drift_devices"`
	HealthyCount int                `json:"healthy_count"`
}
