package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
)

// Step 向导中的一步
//
// 每一步只校验自己的输入，校验通过后才写入草稿。
// 步骤对象在整个向导期间保留，返回上一步时输入值不会丢失。
type Step interface {
	Title() string
	// Enter 成为当前步骤时调用
	Enter(draft *entity.ProvisioningConfig) tea.Cmd
	Update(msg tea.KeyMsg) tea.Cmd
	// Commit 校验输入并写入草稿
	Commit(draft *entity.ProvisioningConfig) error
	View() string
}

// newSteps 按顺序构造所有步骤
func newSteps(opts *Options) []Step {
	return []Step{
		newTemplateStep(opts.Templates),
		newIdentityStep(opts.NextVMID),
		newResourcesStep(opts.RootfsStorages),
		newNetworkStep(opts.Bridges),
		newReviewStep(opts.Node),
	}
}

// templateStep 选择容器模板
type templateStep struct {
	templates []entity.StorageContent
	cursor    int
}

const templateWindow = 10

var (
	templateUp   = key.NewBinding(key.WithKeys("up", "k"))
	templateDown = key.NewBinding(key.WithKeys("down", "j"))
)

func newTemplateStep(templates []entity.StorageContent) *templateStep {
	return &templateStep{templates: templates}
}

func (s *templateStep) Title() string { return "Template" }

func (s *templateStep) Enter(*entity.ProvisioningConfig) tea.Cmd { return nil }

func (s *templateStep) Update(msg tea.KeyMsg) tea.Cmd {
	n := len(s.templates)
	if n == 0 {
		return nil
	}
	switch {
	case key.Matches(msg, templateUp):
		s.cursor = (s.cursor - 1 + n) % n
	case key.Matches(msg, templateDown):
		s.cursor = (s.cursor + 1) % n
	}
	return nil
}

func (s *templateStep) Commit(draft *entity.ProvisioningConfig) error {
	if len(s.templates) == 0 {
		return fmt.Errorf("no container templates found; download one to a template storage first")
	}
	draft.OSTemplate = s.templates[s.cursor].Volid
	return nil
}

func (s *templateStep) View() string {
	if len(s.templates) == 0 {
		return dimStyle.Render("No container templates found on this node.") + "\n"
	}

	start := 0
	if s.cursor >= templateWindow {
		start = s.cursor - templateWindow + 1
	}
	end := min(start+templateWindow, len(s.templates))

	var b strings.Builder
	for i := start; i < end; i++ {
		t := s.templates[i]
		line := fmt.Sprintf("%s  %s", t.FileName(), dimStyle.Render(humanize.IBytes(uint64(max(t.Size, 0)))))
		if i == s.cursor {
			b.WriteString(focusedStyle.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(s.templates) > templateWindow {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d", s.cursor+1, len(s.templates))) + "\n")
	}
	return b.String()
}

// identityStep VMID、主机名和凭据
type identityStep struct {
	form     *form
	vmid     *textField
	hostname *textField
	password *textField
	sshKeys  *textField
}

func newIdentityStep(nextID int) *identityStep {
	s := &identityStep{
		vmid:     newTextField("VMID", "100", strconv.Itoa(nextID)),
		hostname: newTextField("Hostname", "ct-01", ""),
		password: newPasswordField("Password"),
		sshKeys:  newTextField("SSH public key", "ssh-ed25519 AAAA... user@host", ""),
	}
	s.form = newForm(s.vmid, s.hostname, s.password, s.sshKeys)
	return s
}

func (s *identityStep) Title() string { return "Identity" }

func (s *identityStep) Enter(*entity.ProvisioningConfig) tea.Cmd { return s.form.Focus() }

func (s *identityStep) Update(msg tea.KeyMsg) tea.Cmd { return s.form.Update(msg) }

func (s *identityStep) Commit(draft *entity.ProvisioningConfig) error {
	id, err := ValidateVMID(s.vmid.Value())
	if err != nil {
		return err
	}
	hostname := s.hostname.Value()
	if err := ValidateHostname(hostname); err != nil {
		return err
	}
	password := s.password.input.Value()
	if err := ValidatePassword(password); err != nil {
		return err
	}
	keys := s.sshKeys.Value()
	if err := ValidateSSHKeys(keys); err != nil {
		return err
	}

	draft.VMID = id
	draft.Hostname = hostname
	draft.Password = password
	draft.SSHPublicKeys = keys
	return nil
}

func (s *identityStep) View() string { return s.form.View() }

// resourcesStep 根文件系统和资源限制
type resourcesStep struct {
	form         *form
	storage      *choiceField
	diskGB       *textField
	cores        *textField
	memory       *textField
	swap         *textField
	unprivileged *toggleField
	nesting      *toggleField
	onBoot       *toggleField
	start        *toggleField
}

func newResourcesStep(storages []entity.Storage) *resourcesStep {
	names := make([]string, 0, len(storages))
	for _, st := range storages {
		names = append(names, st.Storage)
	}
	s := &resourcesStep{
		storage:      newChoiceField("Root storage", names),
		diskGB:       newTextField("Disk (GiB)", "8", "8"),
		cores:        newTextField("Cores", "1", "1"),
		memory:       newTextField("Memory (MiB)", "512", "512"),
		swap:         newTextField("Swap (MiB)", "512", "512"),
		unprivileged: newToggleField("Unprivileged", true),
		nesting:      newToggleField("Nesting", false),
		onBoot:       newToggleField("Start on boot", false),
		start:        newToggleField("Start after create", true),
	}
	s.form = newForm(s.storage, s.diskGB, s.cores, s.memory, s.swap, s.unprivileged, s.nesting, s.onBoot, s.start)
	return s
}

func (s *resourcesStep) Title() string { return "Resources" }

func (s *resourcesStep) Enter(*entity.ProvisioningConfig) tea.Cmd { return s.form.Focus() }

func (s *resourcesStep) Update(msg tea.KeyMsg) tea.Cmd { return s.form.Update(msg) }

func (s *resourcesStep) Commit(draft *entity.ProvisioningConfig) error {
	storage := s.storage.Value()
	if storage == "" {
		return fmt.Errorf("no storage available for container root filesystems")
	}
	disk, err := parseOptionalInt("disk size", s.diskGB.Value(), 1)
	if err != nil {
		return err
	}
	if disk == nil {
		return fmt.Errorf("disk size is required")
	}
	cores, err := parseOptionalInt("cores", s.cores.Value(), 1)
	if err != nil {
		return err
	}
	memory, err := parseOptionalInt("memory", s.memory.Value(), MinMemoryMiB)
	if err != nil {
		return err
	}
	swap, err := parseOptionalInt("swap", s.swap.Value(), 0)
	if err != nil {
		return err
	}

	draft.RootFS = entity.RootFSSpec(storage, *disk)
	draft.Cores = cores
	draft.Memory = memory
	draft.Swap = swap
	draft.Unprivileged = boolPtr(s.unprivileged.value)
	draft.OnBoot = boolPtr(s.onBoot.value)
	draft.Start = boolPtr(s.start.value)
	draft.Features = ""
	if s.nesting.value {
		draft.Features = "nesting=1"
	}
	return nil
}

func (s *resourcesStep) View() string { return s.form.View() }

// networkStep 网络配置
type networkStep struct {
	form         *form
	bridge       *choiceField
	ipMode       *choiceField
	ip           *textField
	gateway      *textField
	ip6Mode      *choiceField
	firewall     *toggleField
	nameserver   *textField
	searchDomain *textField
}

func newNetworkStep(bridges []entity.Bridge) *networkStep {
	names := make([]string, 0, len(bridges))
	for _, br := range bridges {
		names = append(names, br.Iface)
	}
	s := &networkStep{
		bridge:       newChoiceField("Bridge", names),
		ipMode:       newChoiceField("IPv4", []string{entity.IPModeDHCP, entity.IPModeStatic}),
		ip:           newTextField("IPv4/CIDR", "192.168.1.50/24", ""),
		gateway:      newTextField("Gateway", "192.168.1.1", ""),
		ip6Mode:      newChoiceField("IPv6", []string{entity.IPModeNone, entity.IPModeAuto, entity.IPModeDHCP}),
		firewall:     newToggleField("Firewall", false),
		nameserver:   newTextField("DNS server", "use host settings", ""),
		searchDomain: newTextField("DNS domain", "use host settings", ""),
	}
	s.form = newForm(s.bridge, s.ipMode, s.ip, s.gateway, s.ip6Mode, s.firewall, s.nameserver, s.searchDomain)
	return s
}

func (s *networkStep) Title() string { return "Network" }

func (s *networkStep) Enter(*entity.ProvisioningConfig) tea.Cmd { return s.form.Focus() }

func (s *networkStep) Update(msg tea.KeyMsg) tea.Cmd { return s.form.Update(msg) }

func (s *networkStep) Commit(draft *entity.ProvisioningConfig) error {
	bridge := s.bridge.Value()
	if bridge == "" {
		return fmt.Errorf("no active network bridge on this node")
	}

	spec := entity.NetworkSpec{
		Bridge:   bridge,
		IPMode:   s.ipMode.Value(),
		IP6Mode:  s.ip6Mode.Value(),
		Firewall: s.firewall.value,
	}
	if spec.IPMode == entity.IPModeStatic {
		spec.IP = s.ip.Value()
		spec.Gateway = s.gateway.Value()
		if err := ValidateCIDR(spec.IP); err != nil {
			return err
		}
		if err := ValidateGateway(spec.Gateway); err != nil {
			return err
		}
	}

	nameserver := s.nameserver.Value()
	if err := ValidateNameserver(nameserver); err != nil {
		return err
	}

	draft.Net0 = spec.String()
	draft.Nameserver = nameserver
	draft.SearchDomain = s.searchDomain.Value()
	return nil
}

func (s *networkStep) View() string { return s.form.View() }

// reviewStep 提交前确认
type reviewStep struct {
	node    string
	summary string
}

func newReviewStep(node string) *reviewStep {
	return &reviewStep{node: node}
}

func (s *reviewStep) Title() string { return "Review" }

func (s *reviewStep) Enter(draft *entity.ProvisioningConfig) tea.Cmd {
	s.summary = summarize(s.node, draft)
	return nil
}

func (s *reviewStep) Update(tea.KeyMsg) tea.Cmd { return nil }

func (s *reviewStep) Commit(*entity.ProvisioningConfig) error { return nil }

func (s *reviewStep) View() string {
	return s.summary + "\n" + dimStyle.Render("Press enter to create the container.") + "\n"
}

// summarize 生成配置摘要，密码不显示明文
func summarize(node string, cfg *entity.ProvisioningConfig) string {
	rows := [][2]string{
		{"Node", node},
		{"VMID", strconv.Itoa(cfg.VMID)},
		{"Hostname", cfg.Hostname},
		{"Template", cfg.OSTemplate},
		{"Root FS", cfg.RootFS},
		{"Cores", optionalInt(cfg.Cores, "")},
		{"Memory", optionalInt(cfg.Memory, " MiB")},
		{"Swap", optionalInt(cfg.Swap, " MiB")},
		{"Network", cfg.Net0},
	}
	if cfg.Nameserver != "" {
		rows = append(rows, [2]string{"DNS server", cfg.Nameserver})
	}
	if cfg.SearchDomain != "" {
		rows = append(rows, [2]string{"DNS domain", cfg.SearchDomain})
	}
	if cfg.Features != "" {
		rows = append(rows, [2]string{"Features", cfg.Features})
	}
	rows = append(rows,
		[2]string{"Password", mask(cfg.Password)},
		[2]string{"SSH key", yesNo(cfg.SSHPublicKeys != "")},
		[2]string{"Unprivileged", optionalBool(cfg.Unprivileged)},
		[2]string{"Start on boot", optionalBool(cfg.OnBoot)},
		[2]string{"Start after create", optionalBool(cfg.Start)},
	)

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-19s", r[0])))
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	return b.String()
}

func optionalInt(v *int, unit string) string {
	if v == nil {
		return "default"
	}
	return strconv.Itoa(*v) + unit
}

func optionalBool(v *bool) string {
	if v == nil {
		return "default"
	}
	return yesNo(*v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func mask(s string) string {
	if s == "" {
		return "not set"
	}
	return "••••••"
}

func boolPtr(v bool) *bool { return &v }
