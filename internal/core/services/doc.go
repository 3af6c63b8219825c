// Package services implements the driving ports on top of the driven ones:
// source management, Notion sync, document queries over the page
// hierarchy, and ad hoc text analysis.
package services
