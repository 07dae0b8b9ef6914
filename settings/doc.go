// Package settings supplies site-level authentication configuration:
// throttling, activation policy, login attribute, registration and
// session-persistence flags.
//
// Values are read through a [Store] and cached per key for the process
// lifetime. All typed getters carry a default, so a freshly provisioned
// site behaves sanely with an empty store. [Provider.ActivateMode] never
// returns an empty value.
package settings
