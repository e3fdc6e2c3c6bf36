package cache

var SaveIfCurrentHash = saveIfCurrent.Hash()
