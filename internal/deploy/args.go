package deploy

// ScriptArgs assembles the positional arguments for the post-processing
// hook: the clone name, then the MAC when a custom MAC was set or MAC
// printing is enabled, then the IP when the clone was powered on and IP
// printing is enabled. Fields whose condition holds but whose value was
// never learned are omitted.
func ScriptArgs(name, mac, ip string, customMAC, printMAC, printIP, poweredOn bool) []string {
	args := []string{name}
	if (customMAC || printMAC) && mac != "" {
		args = append(args, mac)
	}
	if poweredOn && printIP && ip != "" {
		args = append(args, ip)
	}
	return args
}
