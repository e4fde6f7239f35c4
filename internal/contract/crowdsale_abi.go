package contract

func init() {
	RegisterBuiltin(CrowdsaleID,
		"Crowdsale",
		"Sells a funded token for native currency behind an allow-list, a time gate and a cap.",
		crowdsaleABIJSON)
}

const crowdsaleABIJSON = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[
    {"name":"token","type":"address"},
    {"name":"price","type":"uint256"},
    {"name":"maxTokens","type":"uint256"},
    {"name":"openingTime","type":"uint256"},
    {"name":"minContribution","type":"uint256"},
    {"name":"maxContribution","type":"uint256"}]},
  {"type":"receive","stateMutability":"payable"},

  {"type":"function","name":"buyTokens","stateMutability":"payable","inputs":[{"name":"tokenAmount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"setPrice","stateMutability":"nonpayable","inputs":[{"name":"newPrice","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"addToWhitelist","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"removeFromWhitelist","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"toggleWhitelist","stateMutability":"nonpayable","inputs":[{"name":"enabled","type":"bool"}],"outputs":[]},
  {"type":"function","name":"openSale","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"closeSale","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"finalize","stateMutability":"nonpayable","inputs":[],"outputs":[]},

  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"price","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"maxTokens","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokensSold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"openingTime","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"minContribution","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"maxContribution","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"isOpen","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"whitelistEnabled","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"finalized","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"whitelist","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getWhitelistedAddresses","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},

  {"type":"event","name":"Buy","anonymous":false,"inputs":[
    {"name":"amount","type":"uint256","indexed":false},
    {"name":"buyer","type":"address","indexed":false}]},
  {"type":"event","name":"Finalize","anonymous":false,"inputs":[
    {"name":"tokensSold","type":"uint256","indexed":false},
    {"name":"ethRaised","type":"uint256","indexed":false}]}
]`
