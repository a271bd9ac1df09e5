package discovery

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog/log"

	"github.com/mabino/atmo/pkg/device"
)

// serviceTypes maps the DNS-SD service announced by each protocol.
var serviceTypes = map[string]device.Protocol{
	"_mediaremotetv._tcp":  device.ProtocolMRP,
	"_airplay._tcp":        device.ProtocolAirPlay,
	"_companion-link._tcp": device.ProtocolCompanion,
	"_raop._tcp":           device.ProtocolRAOP,
	"_touch-able._tcp":     device.ProtocolDMAP,
}

// identifierPriority orders protocols when picking a device's main identifier.
var identifierPriority = []device.Protocol{
	device.ProtocolMRP,
	device.ProtocolAirPlay,
	device.ProtocolCompanion,
	device.ProtocolRAOP,
	device.ProtocolDMAP,
}

// MDNSScanner discovers devices through multicast DNS service browsing.
type MDNSScanner struct{}

// NewMDNSScanner creates a new MDNSScanner.
func NewMDNSScanner() *MDNSScanner {
	return &MDNSScanner{}
}

type announcement struct {
	protocol device.Protocol
	entry    *zeroconf.ServiceEntry
}

// Scan browses every known service type until the timeout expires and
// groups the announcements by host address.
func (s *MDNSScanner) Scan(ctx context.Context, opts Options) ([]device.Config, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	services := make(map[string]device.Protocol, len(serviceTypes))
	for service, protocol := range serviceTypes {
		if opts.Protocol == "" || opts.Protocol == protocol {
			services[service] = protocol
		}
	}

	found, err := browseAll(ctx, services, browseZeroconf)
	if err != nil {
		return nil, err
	}

	configs := groupAnnouncements(found)
	log.Debug().Int("announcements", len(found)).Int("devices", len(configs)).Msg("mDNS scan finished")
	return configs, nil
}

// browseFunc starts browsing one service type, delivering entries until ctx
// is done and then closing the channel. On error the channel is left alone.
type browseFunc func(ctx context.Context, service string, entries chan<- *zeroconf.ServiceEntry) error

func browseZeroconf(ctx context.Context, service string, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("mdns resolver: %w", err)
	}
	if err := resolver.Browse(ctx, service, "local.", entries); err != nil {
		return fmt.Errorf("mdns browse %s: %w", service, err)
	}
	return nil
}

// browseAll collects announcements for every service until ctx is done. A
// consumer is started only once its browse is running; a failed browse
// cancels the others and waits for their consumers before returning.
func browseAll(ctx context.Context, services map[string]device.Protocol, browse browseFunc) ([]announcement, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu    sync.Mutex
		found []announcement
		wg    sync.WaitGroup
	)

	for service, protocol := range services {
		entries := make(chan *zeroconf.ServiceEntry)
		if err := browse(ctx, service, entries); err != nil {
			cancel()
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		go func(protocol device.Protocol, entries <-chan *zeroconf.ServiceEntry) {
			defer wg.Done()
			for entry := range entries {
				mu.Lock()
				found = append(found, announcement{protocol: protocol, entry: entry})
				mu.Unlock()
			}
		}(protocol, entries)
	}

	<-ctx.Done()
	wg.Wait()
	return found, nil
}

func groupAnnouncements(found []announcement) []device.Config {
	byAddress := make(map[string]*device.Config)
	var order []string

	for _, a := range found {
		address := entryAddress(a.entry)
		if address == "" {
			continue
		}

		cfg, ok := byAddress[address]
		if !ok {
			cfg = &device.Config{Address: address}
			byAddress[address] = cfg
			order = append(order, address)
		}
		if cfg.Service(a.protocol) != nil {
			continue
		}

		txt := parseTXT(a.entry.Text)
		svc := device.Service{
			Protocol:         a.protocol,
			Identifier:       serviceIdentifier(a.protocol, a.entry.Instance, txt),
			Port:             a.entry.Port,
			RequiresPassword: txt["pw"] == "true" || txt["pw"] == "1",
			Pairing:          pairingRequirement(a.protocol),
			Enabled:          true,
		}
		cfg.Services = append(cfg.Services, svc)

		if name := serviceName(a.protocol, a.entry.Instance, txt); name != "" && (cfg.Name == "" || a.protocol == device.ProtocolAirPlay) {
			cfg.Name = name
		}
		if model := txt["model"]; model != "" && cfg.Info.RawModel == "" {
			cfg.Info.RawModel = model
			cfg.Info.ModelStr = model
		}
		if v := txt["osvers"]; v != "" && cfg.Info.Version == "" {
			cfg.Info.Version = v
		}
		if mac := txt["deviceid"]; mac != "" && cfg.Info.MAC == "" {
			cfg.Info.MAC = strings.ToLower(mac)
		}
	}

	configs := make([]device.Config, 0, len(order))
	for _, address := range order {
		cfg := byAddress[address]
		finishConfig(cfg)
		configs = append(configs, *cfg)
	}
	sort.SliceStable(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs
}

func finishConfig(cfg *device.Config) {
	seen := make(map[string]bool)
	for _, p := range identifierPriority {
		svc := cfg.Service(p)
		if svc == nil || svc.Identifier == "" || seen[svc.Identifier] {
			continue
		}
		seen[svc.Identifier] = true
		cfg.AllIdentifiers = append(cfg.AllIdentifiers, svc.Identifier)
		if cfg.Identifier == "" {
			cfg.Identifier = svc.Identifier
		}
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Address
	}
}

func entryAddress(entry *zeroconf.ServiceEntry) string {
	if len(entry.AddrIPv4) > 0 {
		return entry.AddrIPv4[0].String()
	}
	if len(entry.AddrIPv6) > 0 {
		return entry.AddrIPv6[0].String()
	}
	return ""
}

func parseTXT(records []string) map[string]string {
	txt := make(map[string]string, len(records))
	for _, r := range records {
		key, value, _ := strings.Cut(r, "=")
		txt[key] = value
	}
	return txt
}

func serviceIdentifier(protocol device.Protocol, instance string, txt map[string]string) string {
	switch protocol {
	case device.ProtocolMRP:
		return txt["UniqueIdentifier"]
	case device.ProtocolAirPlay:
		return txt["deviceid"]
	case device.ProtocolCompanion:
		return txt["rpHI"]
	case device.ProtocolRAOP:
		// Instance is "<MAC without colons>@<name>".
		mac, _, ok := strings.Cut(instance, "@")
		if !ok || len(mac) != 12 {
			return ""
		}
		return formatMAC(mac)
	case device.ProtocolDMAP:
		return instance
	}
	return ""
}

func serviceName(protocol device.Protocol, instance string, txt map[string]string) string {
	switch protocol {
	case device.ProtocolMRP:
		if name := txt["Name"]; name != "" {
			return name
		}
	case device.ProtocolRAOP:
		if _, name, ok := strings.Cut(instance, "@"); ok {
			return name
		}
	case device.ProtocolDMAP:
		return txt["CtlN"]
	}
	return unescapeInstance(instance)
}

func pairingRequirement(protocol device.Protocol) device.PairingRequirement {
	switch protocol {
	case device.ProtocolCompanion, device.ProtocolAirPlay:
		return device.PairingMandatory
	case device.ProtocolMRP, device.ProtocolDMAP:
		return device.PairingOptional
	}
	return device.PairingNotNeeded
}

func formatMAC(hex string) string {
	parts := make([]string, 0, 6)
	for i := 0; i+2 <= len(hex); i += 2 {
		parts = append(parts, hex[i:i+2])
	}
	return strings.ToUpper(strings.Join(parts, ":"))
}

// unescapeInstance decodes the \DDD escapes DNS-SD uses in instance names.
func unescapeInstance(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if n, err := strconv.Atoi(s[i+1 : i+4]); err == nil && n < 256 {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
